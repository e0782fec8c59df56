package common

import (
	"fmt"
	"strings"
)

// Defaults mirror the limits of the native engine this layer was written
// against.
const (
	DefaultMaxTransactionDepth = 7
	DefaultBookmarkMost        = 256
	DefaultKeyMost             = 255
	DefaultColumnMost          = 255
	DefaultLongValueMost       = 64 << 20
	DefaultMaxSessions         = 256
	DefaultLogLevel            = "info"
)

// --------------------------------------------------------------------------
// Engine configuration struct
// --------------------------------------------------------------------------

// Config holds the engine limits and logging settings.
type Config struct {
	// Engine limits
	MaxTransactionDepth int
	BookmarkMost        int
	KeyMost             int
	ColumnMost          int
	LongValueMost       int
	MaxSessions         int

	// Native structure layout, 0 selects the host pointer size
	PointerSize int

	// Logging configuration
	LogLevel string
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	return Config{
		MaxTransactionDepth: DefaultMaxTransactionDepth,
		BookmarkMost:        DefaultBookmarkMost,
		KeyMost:             DefaultKeyMost,
		ColumnMost:          DefaultColumnMost,
		LongValueMost:       DefaultLongValueMost,
		MaxSessions:         DefaultMaxSessions,
		LogLevel:            DefaultLogLevel,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.MaxTransactionDepth < 1:
		return fmt.Errorf("max transaction depth must be at least 1, got %d", c.MaxTransactionDepth)
	case c.BookmarkMost < 8:
		return fmt.Errorf("bookmark most must be at least 8, got %d", c.BookmarkMost)
	case c.KeyMost < 1:
		return fmt.Errorf("key most must be positive, got %d", c.KeyMost)
	case c.ColumnMost < 1:
		return fmt.Errorf("column most must be positive, got %d", c.ColumnMost)
	case c.LongValueMost < c.ColumnMost:
		return fmt.Errorf("long value most must be at least column most (%d), got %d", c.ColumnMost, c.LongValueMost)
	case c.MaxSessions < 1:
		return fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions)
	case c.PointerSize != 0 && c.PointerSize != 4 && c.PointerSize != 8:
		return fmt.Errorf("pointer size must be 0, 4 or 8, got %d", c.PointerSize)
	}
	_, err := ParseLogLevel(c.LogLevel)
	return err
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Engine Limits")
	addField("Max Transaction Depth", fmt.Sprintf("%d", c.MaxTransactionDepth))
	addField("Bookmark Most", fmt.Sprintf("%d bytes", c.BookmarkMost))
	addField("Key Most", fmt.Sprintf("%d bytes", c.KeyMost))
	addField("Column Most", fmt.Sprintf("%d bytes", c.ColumnMost))
	addField("Long Value Most", fmt.Sprintf("%d bytes", c.LongValueMost))
	addField("Max Sessions", fmt.Sprintf("%d", c.MaxSessions))

	addSection("Native Layout")
	if c.PointerSize == 0 {
		addField("Pointer Size", "host")
	} else {
		addField("Pointer Size", fmt.Sprintf("%d bytes", c.PointerSize))
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
