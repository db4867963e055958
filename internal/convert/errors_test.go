// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewError(KindWriteFailed, "/out/a.pdf", "disk full", errors.New("ENOSPC"))
	assert.Equal(t, "write_failed: /out/a.pdf: disk full: ENOSPC", err.Error())

	bare := NewError(KindToolNotInstalled, "", "", nil)
	assert.Equal(t, "tool_not_installed", bare.Error())
}

func TestKindOf(t *testing.T) {
	inner := NewError(KindSourceUnreadable, "a.pdf", "", nil)
	wrapped := fmt.Errorf("job 1: %w", inner)

	assert.Equal(t, KindSourceUnreadable, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindSourceUnreadable))
	assert.False(t, IsKind(wrapped, KindWriteFailed))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindWriteFailed))
}

func TestNormalize(t *testing.T) {
	typed := NewError(KindOutputNotProduced, "x", "", nil)
	assert.Same(t, typed, normalize(typed, "in"))

	assert.Equal(t, KindUserCancelled, normalize(context.Canceled, "in").Kind)
	assert.Equal(t, KindWriteFailed, normalize(errors.New("io"), "in").Kind)
	assert.Equal(t, "in", normalize(errors.New("io"), "in").Path)
}
