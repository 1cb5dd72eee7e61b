package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func newBufferLogger(name string, level Level) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return newLogger(name, level, true, NewWriterAppender(buf)), buf
}

func splitLine(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	return strings.Split(strings.TrimSuffix(line, "\n"), "\t")
}

func TestConsoleFormat(t *testing.T) {
	logger, buf := newBufferLogger("demo", DEBUG)

	logger.Infow("hello world")
	parts := splitLine(t, buf)
	test.That(t, parts, test.ShouldHaveLength, 5)
	test.That(t, parts[0], test.ShouldEndWith, "Z")
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "demo")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "hello world")

	logger.Warnw("joint commanded", "joint", 0, "target", 1.57)
	parts = splitLine(t, buf)
	test.That(t, parts, test.ShouldHaveLength, 6)
	test.That(t, parts[1], test.ShouldEqual, "WARN")
	test.That(t, parts[5], test.ShouldEqual, `{"joint":0,"target":1.57}`)

	fields := map[string]any{}
	test.That(t, json.Unmarshal([]byte(parts[5]), &fields), test.ShouldBeNil)
	test.That(t, fields["target"], test.ShouldEqual, 1.57)

	// an unnamed logger leaves the name column out
	unnamed, buf := newBufferLogger("", DEBUG)
	unnamed.Errorw("failed")
	parts = splitLine(t, buf)
	test.That(t, parts, test.ShouldHaveLength, 4)
	test.That(t, parts[1], test.ShouldEqual, "ERROR")
	test.That(t, parts[2], test.ShouldStartWith, "logging/impl_test.go:")
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("", WARN)

	logger.Debugw("dropped")
	logger.Infow("dropped", "n", 1)
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warnw("kept", "n", 2)
	logger.Errorw("kept", "n", 3)
	test.That(t, strings.Count(buf.String(), "\n"), test.ShouldEqual, 2)

	buf.Reset()
	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debugw("now kept")
	test.That(t, buf.String(), test.ShouldContainSubstring, "now kept")
}

func TestContextDebug(t *testing.T) {
	logger, buf := newBufferLogger("", INFO)

	logger.CDebugw(context.Background(), "dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	ctx := WithDebug(context.Background())
	logger.CDebugw(ctx, "kept", "step", 3)
	parts := splitLine(t, buf)
	test.That(t, parts[1], test.ShouldEqual, "DEBUG")
	test.That(t, parts[len(parts)-1], test.ShouldEqual, `{"step":3}`)

	// plain Debugw ignores the context flag
	logger.Debugw("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	// a debug logger does not need the flag
	logger.SetLevel(DEBUG)
	logger.CDebugw(context.Background(), "kept")
	test.That(t, buf.String(), test.ShouldContainSubstring, "kept")
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	sub := logger.Sublogger("physics").Sublogger("viewer")
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)

	// levels are independent once split off
	sub.SetLevel(INFO)
	sub.Infow("started", "mode", "gui")
	logger.Infow("dropped")

	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "physics.viewer")
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.InfoLevel)
	test.That(t, entries[0].ContextMap()["mode"], test.ShouldEqual, "gui")

	// appenders added to the parent later reach the child too
	var buf bytes.Buffer
	logger.AddAppender(NewWriterAppender(&buf))
	sub.Infow("redrawn")
	test.That(t, buf.String(), test.ShouldContainSubstring, "physics.viewer")
	test.That(t, observed.FilterMessage("redrawn").Len(), test.ShouldEqual, 1)
}

func TestUnpairedKey(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("oops", "joint", 2, "lonely")

	entries := observed.FilterMessage("oops").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["joint"], test.ShouldEqual, int64(2))
	test.That(t, entries[0].ContextMap()["lonely"], test.ShouldEqual, "<missing value>")
}

func TestLevelFromString(t *testing.T) {
	for _, level := range []Level{DEBUG, INFO, WARN, ERROR} {
		parsed, err := LevelFromString(strings.ToLower(level.String()))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, level)
	}

	for _, bad := range []string{"loud", "INFO", "warning", ""} {
		_, err := LevelFromString(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestFileAppender(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "logs", "run.log")
	appender := NewFileAppender(filename)

	logger := NewStderrLogger("file", INFO)
	logger.AddAppender(appender)
	logger.Infow("step", "n", 3)
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	data, err := os.ReadFile(filename)
	test.That(t, err, test.ShouldBeNil)
	fields := strings.Split(strings.TrimSpace(string(data)), "\t")
	test.That(t, fields[1], test.ShouldEqual, "INFO")
	test.That(t, fields[2], test.ShouldEqual, "file")
	test.That(t, fields[len(fields)-1], test.ShouldEqual, `{"n":3}`)
}
