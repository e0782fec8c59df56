package selftest

import (
	"github.com/DamirAinullin/ManagedEsent/cmd/util"
	"github.com/DamirAinullin/ManagedEsent/lib/common"
	"testing"
)

func TestScenarios(t *testing.T) {
	for _, ptr := range []int{0, 4, 8} {
		conf := common.DefaultConfig()
		conf.PointerSize = ptr
		api, surface, err := util.NewInstrumentedAPI(conf)
		if err != nil {
			t.Fatalf("NewInstrumentedAPI failed: %v", err)
		}
		for _, sc := range scenarios {
			if err := runScenario(api, surface, sc); err != nil {
				t.Errorf("pointer size %d: scenario %s failed: %v", ptr, sc.name, err)
			}
		}
		if surface.TotalCalls() == 0 {
			t.Errorf("Expected engine calls to be counted")
		}
	}
}

func TestShouldSkip(t *testing.T) {
	selftestSkip = []string{"rollback", " intersection"}
	defer func() { selftestSkip = nil }()

	if !shouldSkip("rollback") || !shouldSkip("intersection") {
		t.Errorf("Expected listed scenarios to be skipped")
	}
	if shouldSkip("index-seek") {
		t.Errorf("Expected index-seek to run")
	}
}
