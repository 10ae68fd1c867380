package logger

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestWithContextIncludesRequestID(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	ctx := WithRequestID(context.Background(), "req-42")
	WarnWithContext(ctx, "report %s throttled", "abc")

	assert.Contains(t, buf.String(), "[req_id=req-42] report abc throttled")
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestRequestIDMissing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Empty(t, RequestID(nil)) //nolint:staticcheck
}

func TestPlainLoggersOmitRequestID(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("server listening on %s", ":8080")
	Error("shutdown failed: %v", "timeout")

	assert.Contains(t, buf.String(), "[INFO]  server listening on :8080\n")
	assert.Contains(t, buf.String(), "[ERROR] shutdown failed: timeout\n")
	assert.NotContains(t, buf.String(), "req_id")
}
