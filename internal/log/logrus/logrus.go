// Package logrus adapts a logrus entry to the tdjson logging.Logger interface.
package logrus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sirupsen/logrus"

	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
)

type logger struct {
	*logrus.Entry
}

// NewLogrus returns a new logging.Logger backed by entry.
func NewLogrus(entry *logrus.Entry) logging.Logger {
	return logger{Entry: entry}
}

func (l logger) Debug(ctx context.Context, msg string, args ...any) {
	l.withArgs(ctx, args).Debug(msg)
}

func (l logger) Info(ctx context.Context, msg string, args ...any) {
	l.withArgs(ctx, args).Info(msg)
}

func (l logger) Warn(ctx context.Context, msg string, args ...any) {
	l.withArgs(ctx, args).Warning(msg)
}

func (l logger) Error(ctx context.Context, msg string, args ...any) {
	l.withArgs(ctx, args).Error(msg)
}

func (l logger) With(args ...any) logging.Logger {
	return logger{Entry: l.Entry.WithFields(fields(args))}
}

func (l logger) withArgs(ctx context.Context, args []any) *logrus.Entry {
	return l.Entry.WithContext(ctx).WithFields(fields(args))
}

// fields converts slog-style arguments (alternating keys and values, or
// slog.Attr) into logrus fields.
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			f[a.Key] = a.Value.Any()
		case string:
			if i+1 < len(args) {
				f[a] = args[i+1]
				i++
			} else {
				f["!BADKEY"] = a
			}
		default:
			f[fmt.Sprintf("!BADKEY%d", i)] = a
		}
	}
	return f
}
