package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

func TestDiagnosticLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Diagnostic(log, "extract", apperrors.EmptyInputf("text is empty"))
	Diagnostic(log, "store", errors.New("connection refused"))
	Diagnostic(log, "noop", nil)

	out := buf.String()
	if !strings.Contains(out, "level=WARN msg=extract") || !strings.Contains(out, "kind=empty_input") {
		t.Errorf("expected warn line for diagnostic, got %s", out)
	}
	if !strings.Contains(out, "level=ERROR msg=store") {
		t.Errorf("expected error line for plain error, got %s", out)
	}
	if strings.Contains(out, "noop") {
		t.Errorf("expected nil error to log nothing, got %s", out)
	}
}

func TestFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "text")
	defer slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("expected request id in output, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}
