// Package logging provides structured logging using uber/zap.
//
// The shell owns stdout, so the default logger writes JSON to stderr and
// only at warn and above. Development mode switches to a colored console
// encoder at debug level.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Warn("remote call failed", zap.String("op", "copy"), zap.Error(err))
package logging
