package util

import (
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/lib/common"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/engines/memtable"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/instrumented"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix prefixes every environment variable read by the CLI
	EnvPrefix = "isam"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupEngineFlags adds the engine limit and logging flags to a command
func SetupEngineFlags(cmd *cobra.Command) {
	key := "max-transaction-depth"
	cmd.PersistentFlags().Int(key, common.DefaultMaxTransactionDepth, WrapString("Deepest transaction nesting level the engine accepts"))

	key = "bookmark-most"
	cmd.PersistentFlags().Int(key, common.DefaultBookmarkMost, WrapString("Largest bookmark the engine advertises (in bytes)"))

	key = "key-most"
	cmd.PersistentFlags().Int(key, common.DefaultKeyMost, WrapString("Normalized keys are truncated to this many bytes"))

	key = "column-most"
	cmd.PersistentFlags().Int(key, common.DefaultColumnMost, WrapString("Longest value of a non-long column (in bytes)"))

	key = "long-value-most"
	cmd.PersistentFlags().Int(key, common.DefaultLongValueMost, WrapString("Longest long value the engine stores (in bytes)"))

	key = "max-sessions"
	cmd.PersistentFlags().Int(key, common.DefaultMaxSessions, WrapString("Number of sessions that may be open at the same time"))

	key = "pointer-size"
	cmd.PersistentFlags().Int(key, 0, WrapString("Pointer size of the native structure layout (4 or 8, 0 selects the host)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, common.DefaultLogLevel, WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConfig reads the engine configuration from viper and validates it
func GetConfig() (common.Config, error) {
	conf := common.Config{
		MaxTransactionDepth: viper.GetInt("max-transaction-depth"),
		BookmarkMost:        viper.GetInt("bookmark-most"),
		KeyMost:             viper.GetInt("key-most"),
		ColumnMost:          viper.GetInt("column-most"),
		LongValueMost:       viper.GetInt("long-value-most"),
		MaxSessions:         viper.GetInt("max-sessions"),
		PointerSize:         viper.GetInt("pointer-size"),
		LogLevel:            viper.GetString("log-level"),
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("invalid configuration: %w", err)
	}
	return conf, nil
}

// NewInstrumentedAPI builds a memtable engine from conf, wraps it with call
// counters and returns the checked API on top of it.
func NewInstrumentedAPI(conf common.Config) (*jet.API, *instrumented.Surface, error) {
	surface := instrumented.New(memtable.New(memtable.OptionsFromConfig(conf)))
	api, err := jet.NewAPI(surface)
	if err != nil {
		return nil, nil, err
	}
	return api, surface, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
