package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	testCases := []struct {
		level string
		want  zapcore.Level
	}{
		{level: "debug", want: zapcore.DebugLevel},
		{level: "", want: zapcore.InfoLevel},
		{level: "WARNING", want: zapcore.WarnLevel},
		{level: "error", want: zapcore.ErrorLevel},
		{level: "verbose", want: zapcore.InfoLevel},
	}
	for _, testCase := range testCases {
		logger, err := NewLogger(testCase.level, "json")
		if err != nil {
			t.Fatalf("level %q: %v", testCase.level, err)
		}
		if !logger.Core().Enabled(testCase.want) {
			t.Fatalf("level %q: expected %s enabled", testCase.level, testCase.want)
		}
		if testCase.want > zapcore.DebugLevel && logger.Core().Enabled(testCase.want-1) {
			t.Fatalf("level %q: expected %s disabled", testCase.level, testCase.want-1)
		}
	}
}

func TestNewLoggerConsoleEncoding(t *testing.T) {
	if _, err := NewLogger("info", "console"); err != nil {
		t.Fatalf("console logger: %v", err)
	}
}
