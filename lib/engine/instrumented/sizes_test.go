package instrumented

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/engines/memtable"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"testing"
)

func TestValueSizes(t *testing.T) {
	v := newValueSizes()
	if v.Mean() != 0 || v.Percentile(50) != 0 {
		t.Errorf("Expected zero estimates without samples")
	}
	for _, size := range []int{0, 4, 4, 4, 200, 5000} {
		v.Add(size)
	}
	v.Add(-1)

	if v.Count() != 6 {
		t.Errorf("Expected 6 samples, got %d", v.Count())
	}
	if v.Total() != 5212 || v.Max() != 5000 {
		t.Errorf("Expected total 5212 and max 5000, got %d/%d", v.Total(), v.Max())
	}
	if v.Mean() != 868 {
		t.Errorf("Expected mean 868, got %d", v.Mean())
	}

	tests := []struct {
		p    int
		want int
	}{
		{0, 0},
		{10, 0},
		{50, 4},
		{70, 255},
		{100, 5000},
		{101, 0},
	}
	for _, tt := range tests {
		if got := v.Percentile(tt.p); got != tt.want {
			t.Errorf("Percentile(%d) = %d, want %d", tt.p, got, tt.want)
		}
	}

	bounds, shares := v.Distribution()
	if len(shares) != len(bounds)+1 {
		t.Fatalf("Expected one share per bucket, got %d shares for %d bounds", len(shares), len(bounds))
	}
	var sum float64
	for _, s := range shares {
		sum += s
	}
	if sum < 99.99 || sum > 100.01 {
		t.Errorf("Expected shares to add up to 100, got %f", sum)
	}
}

func TestSurfaceTracksPayloadSizes(t *testing.T) {
	s := New(memtable.New(nil))
	api, err := jet.NewAPI(s)
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	ses, err := api.BeginSession()
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	defer api.EndSession(ses)

	tid, ids, err := api.OpenTempTable(ses, []native.ColumnDef{
		{Coltyp: engine.ColtypLong},
		{Coltyp: engine.ColtypBinary},
	}, engine.TempTableNone)
	if err != nil {
		t.Fatalf("OpenTempTable failed: %v", err)
	}
	defer api.CloseTable(ses, tid)

	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	if err := api.SetColumnInt32(ses, tid, ids[0], 7); err != nil {
		t.Fatalf("SetColumnInt32 failed: %v", err)
	}
	if _, err := api.Update(ses, tid, nil, 0); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if ok, err := api.TryMoveFirst(ses, tid); err != nil || !ok {
		t.Fatalf("TryMoveFirst = (%v, %v)", ok, err)
	}
	if _, _, err := api.RetrieveColumnAsInt32(ses, tid, ids[0], engine.RetrieveColumnNone); err != nil {
		t.Fatalf("RetrieveColumnAsInt32 failed: %v", err)
	}
	// null values are not payloads
	if b, err := api.RetrieveColumnBytes(ses, tid, ids[1], engine.RetrieveColumnNone, nil); err != nil || b != nil {
		t.Fatalf("Expected a null binary column, got (%v, %v)", b, err)
	}

	if s.Written().Count() != 1 || s.Written().Total() != 4 {
		t.Errorf("Expected one 4-byte write, got %d/%d", s.Written().Count(), s.Written().Total())
	}
	if s.Read().Count() < 1 || s.Read().Max() != 4 {
		t.Errorf("Expected 4-byte reads, got %d/%d", s.Read().Count(), s.Read().Max())
	}
}
