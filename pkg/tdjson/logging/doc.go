// Package logging provides a minimal logging facade for the tdjson client.
//
// The Logger interface wraps a subset of log/slog so applications can route
// client diagnostics into their own logging system:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Default Implementation
//
//	// Use default logger (slog.Default())
//	logger := logging.New(nil)
//
//	// Use custom slog.Logger
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	client, err := tdjson.Open(tdjson.Config{Logger: logging.New(slog.New(handler))})
//
// Use Noop to silence the client entirely.
//
// # Redaction
//
// TDLib requests routinely carry phone numbers, login codes and 2FA
// passwords. The client only ever logs the "@type" of a request or response;
// payloads are replaced with Redacted:
//
//	logger.Debug(ctx, "send", "type", "checkAuthenticationCode", logging.Redacted("payload"))
//	// Logs: payload="[redacted]"
package logging
