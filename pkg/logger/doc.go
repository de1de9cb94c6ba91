// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the delivery pipeline by
// exposing a single factory, New, that creates a *slog.Logger configured by a
// set of Option functions. These options allow you to:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from a
//     context value every time Handle is invoked
//
// # Architecture
//
// New determines the concrete slog.Handler implementation, slog.NewTextHandler
// or slog.NewJSONHandler, based on the configured Format. It then wraps the
// handler with LogHandlerDecorator which runs any registered ContextExtractor
// callbacks before delegating to the underlying handler.
//
// Helper constructors such as Error, NotificationID, RuleName, and RetryCount
// live in attr.go and keep attribute naming consistent across the codebase.
//
// # Usage
//
//	import "github.com/dmitrymomot/notifykit/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithProduction("notifier"),
//	        logger.WithContextExtractors(logger.NotificationIDExtractor),
//	    )
//	    logger.SetAsDefault(log)
//
//	    ctx := logger.ContextWithNotificationID(context.Background(), "a1b2")
//	    log.InfoContext(ctx, "delivery attempt finished",
//	        logger.RetryCount(1),
//	        logger.Duration(time.Since(start)),
//	    )
//	}
//
// The delivery worker tags its processing context with the notification
// identifier, so registering NotificationIDExtractor makes every record
// emitted during an attempt carry notification_id without repeating the
// attribute at each call site.
//
// # Error Handling
//
// Helper functions Error and Errors produce attributes only when the supplied
// error value is non-nil allowing calls like:
//
//	log.Info("operation finished", logger.Error(err))
//
// without an additional nil check.
package logger
