package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, NothingToDo, CodeOf(ErrNothingToPush))
	assert.Equal(t, NothingToDo, CodeOf(ErrNothingToCommit.Detailf("cats")))
	assert.Equal(t, Partial, CodeOf(ErrPartialPush.Wrap(errors.New("boom"))))
	assert.Equal(t, ConfigError, CodeOf(ErrConfiguration.Detailf("blockSize")))
	assert.Equal(t, Fatal, CodeOf(ErrConsistency))
	assert.Equal(t, Fatal, CodeOf(errors.New("unexpected")))
	assert.Equal(t, "nothing to do", NothingToDo.String())
}
