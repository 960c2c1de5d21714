package logging

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the interface to our internal logger. All logging methods take a
// message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, kvpairs ...interface{})
	Info(msg string, kvpairs ...interface{})
	Warn(msg string, kvpairs ...interface{})
	Error(msg string, kvpairs ...interface{})
	SetField(key string, val interface{})
	PushFields()
	PopFields()
}

// LogrusLogger is a thread-safe logger whose properties persist and can be modified.
type LogrusLogger struct {
	mtx             sync.Mutex
	logger          *logrus.Entry
	fields          logrus.Fields
	pushedFieldSets []logrus.Fields
}

// NoopLogger implements Logger, but does nothing.
type NoopLogger struct{}

var _ Logger = (*LogrusLogger)(nil)
var _ Logger = (*NoopLogger)(nil)

//
// LogrusLogger
//

// NewLogrusLogger instantiates a logger on top of the standard logrus logger,
// tagging every entry with the given context (under the "ctx" key) and the
// given initial key/value pairs.
func NewLogrusLogger(ctx string, kvpairs ...interface{}) Logger {
	return FromLogrus(logrus.StandardLogger(), ctx, kvpairs...)
}

// FromLogrus wraps an existing logrus logger. Useful when the output or
// level should differ from the process-wide standard logger.
func FromLogrus(l *logrus.Logger, ctx string, kvpairs ...interface{}) Logger {
	entry := logrus.NewEntry(l)
	if len(ctx) > 0 {
		entry = entry.WithField("ctx", ctx)
	}
	return &LogrusLogger{
		logger:          entry,
		fields:          serializeKVPairs(kvpairs...),
		pushedFieldSets: []logrus.Fields{},
	}
}

// serializeKVPairs turns alternating key/value pairs into a field set. An odd
// number of arguments yields an empty set, since we can't tell which value
// is missing. Non-string keys are formatted with %v.
func serializeKVPairs(kvpairs ...interface{}) logrus.Fields {
	res := make(logrus.Fields)
	if (len(kvpairs) % 2) == 0 {
		for i := 0; i < len(kvpairs); i += 2 {
			key, ok := kvpairs[i].(string)
			if !ok {
				key = fmt.Sprintf("%v", kvpairs[i])
			}
			res[key] = kvpairs[i+1]
		}
	}
	return res
}

func (l *LogrusLogger) entry(kvpairs ...interface{}) *logrus.Entry {
	e := l.logger
	if len(l.fields) > 0 {
		e = e.WithFields(l.fields)
	}
	if fields := serializeKVPairs(kvpairs...); len(fields) > 0 {
		e = e.WithFields(fields)
	}
	return e
}

func (l *LogrusLogger) Debug(msg string, kvpairs ...interface{}) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.entry(kvpairs...).Debugln(msg)
}

func (l *LogrusLogger) Info(msg string, kvpairs ...interface{}) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.entry(kvpairs...).Infoln(msg)
}

func (l *LogrusLogger) Warn(msg string, kvpairs ...interface{}) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.entry(kvpairs...).Warnln(msg)
}

func (l *LogrusLogger) Error(msg string, kvpairs ...interface{}) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.entry(kvpairs...).Errorln(msg)
}

// SetField sets a field that persists across all subsequent log calls (until
// popped, if set after a PushFields).
func (l *LogrusLogger) SetField(key string, val interface{}) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.fields[key] = val
}

// PushFields saves the current field set so that fields set afterwards can be
// discarded with PopFields.
func (l *LogrusLogger) PushFields() {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	saved := make(logrus.Fields, len(l.fields))
	for k, v := range l.fields {
		saved[k] = v
	}
	l.pushedFieldSets = append(l.pushedFieldSets, saved)
}

func (l *LogrusLogger) PopFields() {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	pfsLen := len(l.pushedFieldSets)
	if pfsLen > 0 {
		l.fields = l.pushedFieldSets[pfsLen-1]
		l.pushedFieldSets = l.pushedFieldSets[:pfsLen-1]
	}
}

//
// NoopLogger
//

// NewNoopLogger will instantiate a logger that does nothing when called.
func NewNoopLogger() Logger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(msg string, kvpairs ...interface{}) {}
func (l *NoopLogger) Info(msg string, kvpairs ...interface{})  {}
func (l *NoopLogger) Warn(msg string, kvpairs ...interface{})  {}
func (l *NoopLogger) Error(msg string, kvpairs ...interface{}) {}
func (l *NoopLogger) SetField(key string, val interface{})     {}
func (l *NoopLogger) PushFields()                              {}
func (l *NoopLogger) PopFields()                               {}
