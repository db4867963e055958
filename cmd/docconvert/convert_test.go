// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconvert/internal/batch"
	"github.com/pdiddy/docconvert/internal/conflict"
	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/pkg/types"
)

func TestAnswerConflict(t *testing.T) {
	d := &conflict.Decision{ID: "d1", ExistingPath: "/out/report.pdf"}

	tests := []struct {
		name    string
		policy  types.ConflictPolicy
		input   string
		want    conflict.Resolution
		wantErr bool
	}{
		{name: "replace policy", policy: types.ConflictReplace, want: conflict.Replace},
		{name: "cancel policy", policy: types.ConflictCancel, want: conflict.Cancel},
		{name: "ask replace", policy: types.ConflictAsk, input: "r\n", want: conflict.Replace},
		{name: "ask cancel word", policy: types.ConflictAsk, input: "Cancel\n", want: conflict.Cancel},
		{name: "ask retries", policy: types.ConflictAsk, input: "maybe\n\nreplace\n", want: conflict.Replace},
		{name: "ask without newline", policy: types.ConflictAsk, input: "c", want: conflict.Cancel},
		{name: "ask eof", policy: types.ConflictAsk, input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := answerConflict(context.Background(), tt.policy, readLines(strings.NewReader(tt.input)), &out, d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), d.ExistingPath)
		})
	}
}

func TestAnswerConflict_InterruptedWhileWaiting(t *testing.T) {
	d := &conflict.Decision{ID: "d1", ExistingPath: "/out/report.pdf"}
	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string)

	done := make(chan error, 1)
	go func() {
		_, err := answerConflict(ctx, types.ConflictAsk, lines, io.Discard, d)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("prompt kept waiting for input after interrupt")
	}
}

func TestPrintEvent(t *testing.T) {
	job := types.Job{InputPath: "/in/report.docx", OutputPath: "/in/report.pdf", Progress: 0.5}

	tests := []struct {
		name  string
		event batch.Event
		want  string
	}{
		{name: "started", event: batch.Event{Type: batch.EventJobStarted, Job: job}, want: "converting: report.docx\n"},
		{name: "progress", event: batch.Event{Type: batch.EventProgress, Job: job}, want: "  report.docx  50%\n"},
		{name: "completed", event: batch.Event{Type: batch.EventCompleted, Job: job}, want: "converted: report.docx -> /in/report.pdf\n"},
		{
			name: "failed",
			event: batch.Event{Type: batch.EventFailed, Job: job,
				Err: convert.NewError(convert.KindToolNotInstalled, "/in/report.docx", "", errors.New("absent"))},
			want: "failed: report.docx (tool_not_installed: /in/report.docx: absent)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printEvent(&out, tt.event)
			assert.Equal(t, tt.want, out.String())
		})
	}
}
