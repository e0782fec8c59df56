package selftest

import (
	"encoding/csv"
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/cmd/util"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/DamirAinullin/ManagedEsent/lib/scope"
	"github.com/spf13/viper"
	"math"
	"os"
	"strconv"
	"testing"
	"time"
)

const benchRecords = 1000

type benchmark struct {
	name string
	fn   func(b *testing.B)
}

var benchmarks = []benchmark{
	{"insert", benchInsert},
	{"seek", benchSeek},
	{"retrieve", benchRetrieve},
}

func runBenchmarks() error {
	fmt.Println()
	fmt.Println("Benchmarks:")

	results := make(map[string]testing.BenchmarkResult)
	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = testing.BenchmarkResult{}
			printResult(bm.name, results[bm.name])
			continue
		}
		results[bm.name] = testing.Benchmark(bm.fn)
		printResult(bm.name, results[bm.name])
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}
	return nil
}

// benchTable opens a fresh engine with one session and a table holding a
// single indexed Long column.
func benchTable(b *testing.B) (*jet.API, engine.Session, engine.TableID, engine.ColumnID) {
	api, _, err := util.NewInstrumentedAPI(selftestConfig)
	if err != nil {
		b.Fatalf("creating the engine failed: %v", err)
	}
	ses, err := api.BeginSession()
	if err != nil {
		b.Fatalf("BeginSession failed: %v", err)
	}
	b.Cleanup(func() { _ = api.EndSession(ses) })
	tid, err := api.CreateTable(ses, "bench")
	if err != nil {
		b.Fatalf("CreateTable failed: %v", err)
	}
	id, err := api.AddColumn(ses, tid, "n", &native.ColumnDef{Coltyp: engine.ColtypLong})
	if err != nil {
		b.Fatalf("AddColumn failed: %v", err)
	}
	if err := api.CreateIndex(ses, tid, "byN", "+n\x00", 0, 100, engine.CreateIndexNone); err != nil {
		b.Fatalf("CreateIndex failed: %v", err)
	}
	return api, ses, tid, id
}

func fill(b *testing.B, api *jet.API, ses engine.Session, tid engine.TableID, id engine.ColumnID) {
	err := scope.RunInTransaction(api, ses, func(tx *scope.Transaction) error {
		for i := 0; i < benchRecords; i++ {
			upd, err := tx.NewUpdate(tid, engine.PrepInsert)
			if err != nil {
				return err
			}
			if err := upd.SetValue(id, codec.Int32Value(int32(i))); err != nil {
				return err
			}
			if _, err := upd.Save(nil, 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.Fatalf("filling the table failed: %v", err)
	}
}

func benchInsert(b *testing.B) {
	api, ses, tid, id := benchTable(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		upd, err := scope.NewUpdate(api, ses, tid, engine.PrepInsert)
		if err != nil {
			b.Fatalf("NewUpdate failed: %v", err)
		}
		if err := upd.SetValue(id, codec.Int32Value(int32(i))); err != nil {
			b.Fatalf("SetValue failed: %v", err)
		}
		if _, err := upd.Save(nil, 0); err != nil {
			b.Fatalf("Save failed: %v", err)
		}
	}
}

func benchSeek(b *testing.B) {
	api, ses, tid, id := benchTable(b)
	fill(b, api, ses, tid, id)
	if err := api.SetCurrentIndex(ses, tid, "byN"); err != nil {
		b.Fatalf("SetCurrentIndex failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := api.MakeKeyValue(ses, tid, codec.Int32Value(int32(i%benchRecords)), engine.MakeKeyNewKey); err != nil {
			b.Fatalf("MakeKey failed: %v", err)
		}
		if found, err := api.TrySeek(ses, tid, engine.SeekEQ); err != nil || !found {
			b.Fatalf("TrySeek = (%v, %v)", found, err)
		}
	}
}

func benchRetrieve(b *testing.B) {
	api, ses, tid, id := benchTable(b)
	fill(b, api, ses, tid, id)
	if _, err := api.TryMoveFirst(ses, tid); err != nil {
		b.Fatalf("TryMoveFirst failed: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := api.RetrieveColumnAsInt32(ses, tid, id, engine.RetrieveColumnNone); err != nil {
			b.Fatalf("RetrieveColumnAsInt32 failed: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"MaxTransactionDepth", "KeyMost", "MaxSessions", "PointerSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, bm := range benchmarks {
		result := results[bm.name]
		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			bm.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.Itoa(selftestConfig.MaxTransactionDepth),
			strconv.Itoa(selftestConfig.KeyMost),
			strconv.Itoa(selftestConfig.MaxSessions),
			strconv.Itoa(selftestConfig.PointerSize),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", bm.name, err)
		}
	}
	return nil
}
