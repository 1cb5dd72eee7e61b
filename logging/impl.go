package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// callerSkip reaches the caller of a Logger method from entryCaller: entryCaller, write, the
// method, its caller.
const callerSkip = 3

// appenderSet is shared by a logger and its subloggers.
type appenderSet struct {
	mu   sync.RWMutex
	list []Appender
}

func (set *appenderSet) add(appender Appender) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.list = append(set.list, appender)
}

func (set *appenderSet) all() []Appender {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return set.list[:len(set.list):len(set.list)]
}

type logger struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders *appenderSet
}

func newLogger(name string, level Level, inUTC bool, appenders ...Appender) *logger {
	return &logger{
		name:      name,
		level:     NewAtomicLevelAt(level),
		inUTC:     inUTC,
		appenders: &appenderSet{list: appenders},
	}
}

func (l *logger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return &logger{name: name, level: NewAtomicLevelAt(l.level.Get()), inUTC: l.inUTC, appenders: l.appenders}
}

func (l *logger) AddAppender(appender Appender) {
	l.appenders.add(appender)
}

func (l *logger) SetLevel(level Level) {
	l.level.Set(level)
}

func (l *logger) GetLevel() Level {
	return l.level.Get()
}

func (l *logger) Sync() error {
	var err error
	for _, appender := range l.appenders.all() {
		err = multierr.Combine(err, appender.Sync())
	}
	return err
}

func (l *logger) Debugw(msg string, keysAndValues ...interface{}) {
	if l.level.Get() <= DEBUG {
		l.write(DEBUG, msg, keysAndValues)
	}
}

func (l *logger) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if l.level.Get() <= DEBUG || debugEnabled(ctx) {
		l.write(DEBUG, msg, keysAndValues)
	}
}

func (l *logger) Infow(msg string, keysAndValues ...interface{}) {
	if l.level.Get() <= INFO {
		l.write(INFO, msg, keysAndValues)
	}
}

func (l *logger) Warnw(msg string, keysAndValues ...interface{}) {
	if l.level.Get() <= WARN {
		l.write(WARN, msg, keysAndValues)
	}
}

func (l *logger) Errorw(msg string, keysAndValues ...interface{}) {
	if l.level.Get() <= ERROR {
		l.write(ERROR, msg, keysAndValues)
	}
}

func (l *logger) write(level Level, msg string, keysAndValues []interface{}) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Caller:     entryCaller(),
	}
	if l.inUTC {
		entry.Time = entry.Time.UTC()
	}
	fields := pairsToFields(keysAndValues)
	for _, appender := range l.appenders.all() {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func entryCaller() zapcore.EntryCaller {
	return zapcore.NewEntryCaller(runtime.Caller(callerSkip))
}

// pairsToFields reads alternating keys and values. A trailing key without a value is kept with
// a placeholder so the mistake shows up in the output.
func pairsToFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.String(key, "<missing value>"))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
