package memtable

import (
	"github.com/DamirAinullin/ManagedEsent/lib/common"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
)

// Options configures the engine during initialization
type Options struct {
	MaxTransactionDepth int           // deepest nesting level (BeginTransaction beyond fails)
	BookmarkMost        int           // advertised bookmark limit (bookmarks are 8 bytes)
	KeyMost             int           // normalized keys are truncated to this length
	ColumnMost          int           // longest value of a non-long column
	LongValueMost       int           // longest long value
	MaxSessions         int           // concurrent sessions
	Layout              native.Layout // layout structured arguments are read with
}

// DefaultOptions returns the default engine options
func DefaultOptions() *Options {
	return &Options{
		MaxTransactionDepth: common.DefaultMaxTransactionDepth,
		BookmarkMost:        common.DefaultBookmarkMost,
		KeyMost:             common.DefaultKeyMost,
		ColumnMost:          common.DefaultColumnMost,
		LongValueMost:       common.DefaultLongValueMost,
		MaxSessions:         common.DefaultMaxSessions,
		Layout:              native.Host,
	}
}

// OptionsFromConfig turns a validated Config into engine options. A zero
// pointer size selects the host layout.
func OptionsFromConfig(cfg common.Config) *Options {
	opts := &Options{
		MaxTransactionDepth: cfg.MaxTransactionDepth,
		BookmarkMost:        cfg.BookmarkMost,
		KeyMost:             cfg.KeyMost,
		ColumnMost:          cfg.ColumnMost,
		LongValueMost:       cfg.LongValueMost,
		MaxSessions:         cfg.MaxSessions,
		Layout:              native.Host,
	}
	if cfg.PointerSize != 0 {
		opts.Layout = native.Layout{PointerSize: cfg.PointerSize}
	}
	return opts
}
