package common

import (
	"bytes"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"depth zero":        func(c *Config) { c.MaxTransactionDepth = 0 },
		"tiny bookmark":     func(c *Config) { c.BookmarkMost = 4 },
		"key most zero":     func(c *Config) { c.KeyMost = 0 },
		"column most zero":  func(c *Config) { c.ColumnMost = 0 },
		"long value short":  func(c *Config) { c.LongValueMost = 16 },
		"no sessions":       func(c *Config) { c.MaxSessions = 0 },
		"odd pointer size":  func(c *Config) { c.PointerSize = 2 },
		"unknown log level": func(c *Config) { c.LogLevel = "verbose" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()
	for _, want := range []string{"ENGINE LIMITS", "NATIVE LAYOUT", "LOGGING", "Max Transaction Depth", "host"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() lacks %q:\n%s", want, s)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	prev := output
	output = &buf
	defer func() { output = prev }()

	l := CreateLogger("scope")
	l.Debugf("hidden")
	l.Warningf("implicit rollback of %d levels", 2)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug line written at INFO level: %q", got)
	}
	if !strings.Contains(got, "WARN  | scope           | implicit rollback of 2 levels") {
		t.Errorf("unexpected format: %q", got)
	}
}
