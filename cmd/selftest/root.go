package selftest

import (
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/cmd/util"
	"github.com/DamirAinullin/ManagedEsent/lib/common"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/instrumented"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strings"
	"time"
)

var (
	log = logger.GetLogger("cli")

	SelftestCmd = &cobra.Command{
		Use:   "selftest",
		Short: "Run end-to-end scenarios against the in-memory engine",
		Long: `Run a fixed set of scenarios (inserts, rollbacks, index seeks, ranges,
intersections and argument checks) through the checked call layer against
the in-memory reference engine. The engine limits are taken from the global
flags or their ISAM_* environment variables.`,
		PreRunE: processConfig,
		RunE:    run,
	}
	selftestConfig common.Config
	selftestSkip   = make([]string, 0)
)

func init() {
	// add flags
	key := "metrics"
	SelftestCmd.Flags().Bool(key, false, util.WrapString("Print the per-entry-point call counters in Prometheus text format and a latency table"))

	key = "skip"
	SelftestCmd.Flags().String(key, "", util.WrapString("Scenarios to skip (comma separated - e.g. rollback,intersection)"))

	key = "bench"
	SelftestCmd.Flags().Bool(key, false, util.WrapString("Also run the insert, seek and retrieve benchmarks"))

	key = "csv"
	SelftestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := util.GetConfig()
	if err != nil {
		return err
	}
	if err := common.InitLoggers(conf); err != nil {
		return err
	}
	selftestConfig = conf

	if skip := viper.GetString("skip"); skip != "" {
		selftestSkip = strings.Split(skip, ",")
	}
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Self test of the checked call layer")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(selftestConfig.String())

	api, surface, err := util.NewInstrumentedAPI(selftestConfig)
	if err != nil {
		return err
	}
	log.Infof("running %d scenarios on %s layout", len(scenarios), api.Layout())

	var result *multierror.Error
	passed := 0
	for _, sc := range scenarios {
		if shouldSkip(sc.name) {
			fmt.Printf("%-20sskipped\n", sc.name)
			continue
		}
		start := time.Now()
		if err := runScenario(api, surface, sc); err != nil {
			fmt.Printf("%-20sFAIL\t%v\n", sc.name, err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", sc.name, err))
			continue
		}
		passed++
		fmt.Printf("%-20sok\t%s\n", sc.name, time.Since(start).Round(time.Microsecond))
	}
	fmt.Printf("\n%d passed, %d failed\n", passed, len(result.WrappedErrors()))

	if viper.GetBool("metrics") {
		printMetrics(surface)
	}

	if viper.GetBool("bench") {
		if err := runBenchmarks(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(name string) bool {
	for _, skip := range selftestSkip {
		if strings.TrimSpace(skip) == name {
			return true
		}
	}
	return false
}

func printMetrics(surface *instrumented.Surface) {
	fmt.Println()
	fmt.Println("Counters:")
	surface.WritePrometheus(os.Stdout)

	fmt.Println()
	fmt.Printf("%-26s %8s %8s %12s %12s\n", "ENTRY POINT", "CALLS", "ERRORS", "MEAN", "P99")
	for _, s := range surface.Snapshot() {
		fmt.Printf("%-26s %8d %8d %12s %12s\n", s.Op, s.Calls, s.Errors, s.Mean, s.P99)
	}
	fmt.Printf("\n%d engine calls in total\n", surface.TotalCalls())

	fmt.Println()
	fmt.Printf("%-10s %8s %10s %8s %8s %8s\n", "PAYLOADS", "COUNT", "BYTES", "MEAN", "P99", "MAX")
	for _, p := range []struct {
		name  string
		sizes *instrumented.ValueSizes
	}{
		{"written", surface.Written()},
		{"read", surface.Read()},
	} {
		fmt.Printf("%-10s %8d %10d %8d %8d %8d\n", p.name, p.sizes.Count(), p.sizes.Total(), p.sizes.Mean(), p.sizes.Percentile(99), p.sizes.Max())
	}
}
