// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conflict

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconvert/internal/convert"
)

func existingFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))
	return path
}

func TestCheck_MissingPathIsImmediate(t *testing.T) {
	r := NewResolver(nil)
	assert.Nil(t, r.Check("j1", filepath.Join(t.TempDir(), "absent.pdf")))
	assert.Empty(t, r.Pending())
}

func TestCheck_ExistingPathIsPending(t *testing.T) {
	r := NewResolver(nil)
	path := existingFile(t)

	d := r.Check("j1", path)
	require.NotNil(t, d)
	assert.Equal(t, path, d.ExistingPath)
	assert.Equal(t, "j1", string(d.JobID))
	assert.NotEmpty(t, d.ID)
	assert.Len(t, r.Pending(), 1)
}

func TestResolve_ExactlyOnce(t *testing.T) {
	r := NewResolver(nil)
	d := r.Check("j1", existingFile(t))

	require.NoError(t, r.Resolve(d, Replace))
	assert.ErrorIs(t, r.Resolve(d, Cancel), ErrAlreadyResolved)
	assert.Empty(t, r.Pending())

	res, err := d.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Replace, res)
}

func TestResolve_InvalidAndUnknown(t *testing.T) {
	r := NewResolver(nil)
	d := r.Check("j1", existingFile(t))

	assert.ErrorIs(t, r.Resolve(d, Resolution("maybe")), ErrInvalidResolution)
	assert.ErrorIs(t, r.ResolveID("nope", Replace), ErrUnknownDecision)
	require.NoError(t, r.ResolveID(d.ID, Cancel))
}

func TestGate(t *testing.T) {
	tests := []struct {
		name     string
		choice   Resolution
		wantKind convert.Kind
	}{
		{"replace proceeds", Replace, ""},
		{"cancel fails job", Cancel, convert.KindUserCancelledReplace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(nil)
			path := existingFile(t)

			notified := make(chan *Decision, 1)
			errc := make(chan error, 1)
			go func() {
				errc <- r.Gate(context.Background(), "j1", path, func(d *Decision) { notified <- d })
			}()

			d := <-notified
			select {
			case <-errc:
				t.Fatal("gate returned before the decision was resolved")
			case <-time.After(50 * time.Millisecond):
			}

			require.NoError(t, r.Resolve(d, tt.choice))
			err := <-errc
			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantKind, convert.KindOf(err))
			}
			assert.FileExists(t, path, "the gate never touches the existing file")
		})
	}
}

func TestGate_NoConflict(t *testing.T) {
	r := NewResolver(nil)
	called := false
	err := r.Gate(context.Background(), "j1", filepath.Join(t.TempDir(), "new.pdf"), func(*Decision) { called = true })
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestGate_ContextCancelled(t *testing.T) {
	r := NewResolver(nil)
	ctx, cancel := context.WithCancel(context.Background())

	path := existingFile(t)

	var pending *Decision
	errc := make(chan error, 1)
	go func() {
		errc <- r.Gate(ctx, "j1", path, func(d *Decision) {
			pending = d
			cancel()
		})
	}()

	err := <-errc
	assert.Equal(t, convert.KindUserCancelled, convert.KindOf(err))
	assert.Empty(t, r.Pending())
	assert.ErrorIs(t, r.Resolve(pending, Replace), ErrUnknownDecision)
}

func TestParseResolution(t *testing.T) {
	res, err := ParseResolution("r")
	require.NoError(t, err)
	assert.Equal(t, Replace, res)

	res, err = ParseResolution("cancel")
	require.NoError(t, err)
	assert.Equal(t, Cancel, res)

	_, err = ParseResolution("skip")
	assert.Error(t, err)
}
