package logger

import "testing"

func TestNewLoggerSelectsDriver(t *testing.T) {
	l, err := NewLogger("zap", "info", "json", "stdout", "")
	if err != nil {
		t.Fatalf("NewLogger zap: %v", err)
	}
	if _, ok := l.(*ZapLogger); !ok {
		t.Fatalf("expected *ZapLogger, got %T", l)
	}

	// 未指定或未知 driver 落到 logrus
	for _, driver := range []string{"", "logrus", "unknown"} {
		l, err := NewLogger(driver, "info", "text", "stdout", "")
		if err != nil {
			t.Fatalf("NewLogger %q: %v", driver, err)
		}
		if _, ok := l.(*LogrusLogger); !ok {
			t.Fatalf("driver %q: expected *LogrusLogger, got %T", driver, l)
		}
	}
}

func TestWithFieldsKeepsAccumulatedFields(t *testing.T) {
	l, err := NewLogger("logrus", "info", "json", "stdout", "")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	child := l.WithField("service", "fleet").WithFields(map[string]interface{}{"plate": "AA1234B"})
	lr, ok := child.(*LogrusLogger)
	if !ok {
		t.Fatalf("expected *LogrusLogger, got %T", child)
	}
	if lr.entry.Data["service"] != "fleet" || lr.entry.Data["plate"] != "AA1234B" {
		t.Fatalf("fields lost across chaining: %v", lr.entry.Data)
	}
}
