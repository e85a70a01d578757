// ABOUTME: Adapts a logrus logger to badger's logging interface
// ABOUTME: Badger's info and debug chatter only shows at debug level
package dismissals

import "github.com/sirupsen/logrus"

// badgerLogger passes badger warnings and errors through and keeps its
// startup and compaction notices quiet unless debug logging is on.
type badgerLogger struct {
	log logrus.FieldLogger
}

func newBadgerLogger(log logrus.FieldLogger) *badgerLogger {
	return &badgerLogger{log: log}
}

func (b *badgerLogger) verbose() bool {
	switch l := b.log.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger != nil && l.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return false
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Errorf(format, args...)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warnf(format, args...)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	if b.verbose() {
		b.log.Infof(format, args...)
	}
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	if b.verbose() {
		b.log.Debugf(format, args...)
	}
}
