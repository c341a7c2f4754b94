package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/oneconcern/datagit/pkg/core/status"
)

var (
	// globals used to patch over calls to os.Exit() during test
	osExit = os.Exit

	stdout io.Writer = color.Output
	stderr io.Writer = color.Error
)

func infof(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}

func successf(format string, args ...interface{}) {
	fmt.Fprintln(stdout, color.GreenString(format, args...))
}

// exitWith reports the outcome of an operation and exits with its status code.
// It does not exit on success.
func exitWith(msg string, err error) {
	code := status.CodeOf(err)
	switch code {
	case status.OK:
		return
	case status.NothingToDo:
		fmt.Fprintln(stderr, color.YellowString("%s: %v", msg, err))
	case status.Partial:
		fmt.Fprintln(stderr, color.YellowString("%s: %v", msg, err))
		fmt.Fprintln(stderr, color.HiBlackString("run the command again to retry"))
	default:
		fmt.Fprintln(stderr, color.RedString("%s: %v", msg, err))
	}
	osExit(int(code))
}
