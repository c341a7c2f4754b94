package dlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	for _, level := range []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelNone} {
		l, err := GetLogger(level)
		require.NoError(t, err, level)
		require.NotNil(t, l)

		c, err := GetConsoleLogger(level)
		require.NoError(t, err, level)
		require.NotNil(t, c)
	}

	_, err := GetLogger("verbose")
	assert.Error(t, err)

	assert.Panics(t, func() { _ = MustGetLogger("verbose") })
}
