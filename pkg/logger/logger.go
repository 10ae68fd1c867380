package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type contextKey struct{}

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout

	infoTag  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnTag  = color.New(color.FgBlack, color.BgYellow).SprintFunc()
	errorTag = color.New(color.FgRed).SprintFunc()
)

// SetOutput redirects all log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

func write(ctx context.Context, tag string, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	if id := RequestID(ctx); id != "" {
		msg = fmt.Sprintf("[req_id=%s] %s", id, msg)
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s\n", tag, msg)
}

func Info(format string, a ...interface{}) {
	write(context.Background(), infoTag("[INFO] "), format, a...)
}

func Warn(format string, a ...interface{}) {
	write(context.Background(), warnTag("[WARN] "), format, a...)
}

func Error(format string, a ...interface{}) {
	write(context.Background(), errorTag("[ERROR]"), format, a...)
}

// InfoWithContext logs information with the request ID of ctx when present.
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	write(ctx, infoTag("[INFO] "), format, a...)
}

func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	write(ctx, warnTag("[WARN] "), format, a...)
}

func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	write(ctx, errorTag("[ERROR]"), format, a...)
}
