package util

import (
	"github.com/DamirAinullin/ManagedEsent/lib/common"
	"github.com/spf13/viper"
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Expected lines of at most %d characters, got %d: %q", Wrap, len(line), line)
		}
	}
	if got := WrapString("short text"); got != "short text" {
		t.Errorf("Expected short text unchanged, got %q", got)
	}
}

func TestGetConfigFromEnvironment(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("ISAM_MAX_SESSIONS", "3")
	t.Setenv("ISAM_POINTER_SIZE", "4")
	t.Setenv("ISAM_LOG_LEVEL", "debug")
	InitConfig()
	viper.SetDefault("max-transaction-depth", common.DefaultMaxTransactionDepth)
	viper.SetDefault("bookmark-most", common.DefaultBookmarkMost)
	viper.SetDefault("key-most", common.DefaultKeyMost)
	viper.SetDefault("column-most", common.DefaultColumnMost)
	viper.SetDefault("long-value-most", common.DefaultLongValueMost)

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf.MaxSessions != 3 || conf.PointerSize != 4 || conf.LogLevel != "debug" {
		t.Errorf("Expected environment values, got %+v", conf)
	}
	if conf.KeyMost != common.DefaultKeyMost {
		t.Errorf("Expected default key most, got %d", conf.KeyMost)
	}
}

func TestGetConfigRejectsInvalidValues(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("ISAM_POINTER_SIZE", "6")
	InitConfig()
	viper.SetDefault("max-transaction-depth", common.DefaultMaxTransactionDepth)
	viper.SetDefault("bookmark-most", common.DefaultBookmarkMost)
	viper.SetDefault("key-most", common.DefaultKeyMost)
	viper.SetDefault("column-most", common.DefaultColumnMost)
	viper.SetDefault("long-value-most", common.DefaultLongValueMost)
	viper.SetDefault("max-sessions", common.DefaultMaxSessions)
	viper.SetDefault("log-level", common.DefaultLogLevel)

	if _, err := GetConfig(); err == nil {
		t.Errorf("Expected an error for pointer size 6")
	}
}
