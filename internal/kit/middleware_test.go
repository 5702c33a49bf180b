package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggingEmitsContextTags(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	base := func(_ context.Context, _ any) (any, error) { return "ok", nil }
	ep := Logging(logger)(base)

	ctx := WithTransport(context.Background(), "mcp")
	ctx = WithSessionID(ctx, "ses_1")
	ctx = WithRequestID(ctx, "req_1")
	if _, err := ep(ctx, nil); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"transport=mcp", "session_id=ses_1", "request_id=req_1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLoggingOmitsAbsentTags(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	base := func(_ context.Context, _ any) (any, error) { return nil, nil }
	if _, err := Logging(logger)(base)(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); strings.Contains(out, "session_id") || strings.Contains(out, "request_id") {
		t.Errorf("untagged call must not log session/request ids: %s", out)
	}
}

func TestLoggingPropagatesError(t *testing.T) {
	errFail := errors.New("fail")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	base := func(_ context.Context, _ any) (any, error) { return nil, errFail }

	_, err := Logging(logger)(base)(context.Background(), nil)
	if !errors.Is(err, errFail) {
		t.Fatalf("error: got %v, want %v", err, errFail)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	base := func(_ context.Context, _ any) (any, error) { panic("boom") }

	resp, err := Recovery(logger)(base)(context.Background(), nil)
	if resp != nil {
		t.Errorf("resp = %v, want nil after panic", resp)
	}
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want wrapped panic value", err)
	}
}
