package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
}

func TestErrorSentinelNotMutated(t *testing.T) {
	sentinel := New("sentinel")
	wrapped := sentinel.Wrap(io.EOF)

	assert.Nil(t, sentinel.Unwrap())
	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, Is(wrapped, io.EOF))
	assert.Equal(t, "sentinel: EOF", wrapped.Error())
	assert.Equal(t, "sentinel", sentinel.Error())
}

func TestErrorDetailf(t *testing.T) {
	sentinel := New("missing key")
	detailed := sentinel.Detailf("key %s", "zdj7W").Wrap(io.ErrUnexpectedEOF)

	assert.True(t, Is(detailed, sentinel))
	assert.True(t, Is(detailed, io.ErrUnexpectedEOF))
	assert.Equal(t, "missing key: key zdj7W: unexpected EOF", detailed.Error())
	assert.False(t, Is(detailed, New("missing key")))
}
