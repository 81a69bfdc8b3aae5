package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := NotFound("restaurant not found")
	wrapped := fmt.Errorf("load: %w", base)

	assert.Equal(t, KindNotFound, KindOf(base))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("driver said no")
	err := Wrap(KindConflict, "restaurant already exists", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "restaurant already exists: driver said no", err.Error())
	assert.Equal(t, "conflict", err.Kind.String())
}
