package logger

import "go.uber.org/zap"

// Leveled adapts the package logger to the key/value logging interface used by
// github.com/hashicorp/go-retryablehttp (retryablehttp.LeveledLogger).
type Leveled struct {
	sugar *zap.SugaredLogger
}

func NewLeveled() *Leveled {
	// Callers of Leveled are one frame deeper than callers of Info/Warn.
	return &Leveled{sugar: zapLog.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Request attempts are noisy, keep them at debug.
func (l *Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}
