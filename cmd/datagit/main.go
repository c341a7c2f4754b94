// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/datagit/cmd/datagit/cmd"
)

func main() {
	cmd.Execute()
}
