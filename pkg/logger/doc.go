// Package logger builds *slog.Logger instances with functional options and
// provides attribute helpers so authentication events are logged with
// consistent keys.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler from the configured
// Format and wraps it in a handler that copies selected context values into
// every record.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "securify"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "two-factor enabled",
//		logger.AccountID(acc.ID),
//		logger.State("enabled"),
//	)
//
// Error and Errors return an empty Attr for nil errors, which slog drops, so
// they can be passed unconditionally.
package logger
