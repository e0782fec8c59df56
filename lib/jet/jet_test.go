package jet

import (
	"bytes"
	"errors"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/engines/memtable"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"io"
	"math"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// noCalls is a surface that only answers Limits. Any other call panics on
// the nil embedded interface.
type noCalls struct {
	engine.CallSurface
	limits engine.Limits
}

func (n noCalls) Limits() engine.Limits { return n.limits }

func newChecked(t *testing.T) *API {
	t.Helper()
	api, err := NewAPI(noCalls{limits: engine.Limits{BookmarkMost: 256, KeyMost: 255, MaxTransactionDepth: 7, ColumnMost: 255, LongValueMost: 1 << 20, PointerSize: 8}})
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	return api
}

func newMemtable(t *testing.T) (*API, engine.Session) {
	t.Helper()
	api, err := NewAPI(memtable.New(nil))
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	ses, err := api.BeginSession()
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	t.Cleanup(func() { _ = api.EndSession(ses) })
	return api, ses
}

func tempTable(t *testing.T, api *API, ses engine.Session, defs ...native.ColumnDef) (engine.TableID, []engine.ColumnID) {
	t.Helper()
	tid, ids, err := api.OpenTempTable(ses, defs, engine.TempTableScrollable)
	if err != nil {
		t.Fatalf("OpenTempTable failed: %v", err)
	}
	t.Cleanup(func() { _ = api.CloseTable(ses, tid) })
	return tid, ids
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func TestNewAPI(t *testing.T) {
	if _, err := NewAPI(nil); !errors.Is(err, engine.ErrNullArgument) {
		t.Errorf("Expected null-argument error, got %v", err)
	}
	_, err := NewAPI(noCalls{limits: engine.Limits{PointerSize: 2}})
	if !errors.Is(err, engine.ErrRange) {
		t.Errorf("Expected range error for pointer size 2, got %v", err)
	}
	api := newChecked(t)
	if api.Layout().PointerSize != 8 || api.Limits().BookmarkMost != 256 {
		t.Errorf("Expected the layout and limits of the surface, got %v %+v", api.Layout(), api.Limits())
	}
}

func TestChecksPrecedeCalls(t *testing.T) {
	api := newChecked(t)
	ses, tid := engine.Session(1), engine.TableID(2)
	buf := make([]byte, 4)

	tests := []struct {
		name string
		call func() error
		kind error
	}{
		{"CreateTable empty name", func() error { _, err := api.CreateTable(ses, ""); return err }, engine.ErrNullArgument},
		{"OpenTable empty name", func() error { _, err := api.OpenTable(ses, ""); return err }, engine.ErrNullArgument},
		{"OpenTempTable no columns", func() error { _, _, err := api.OpenTempTable(ses, nil, engine.TempTableNone); return err }, engine.ErrNullArgument},
		{"SetColumn nil data with size", func() error { return api.SetColumn(ses, tid, 1, nil, 4, engine.SetColumnNone, nil) }, engine.ErrRange},
		{"SetColumn negative offset", func() error {
			return api.SetColumn(ses, tid, 1, buf, 4, engine.SetColumnNone, &SetInfo{LongValueOffset: -1})
		}, engine.ErrRange},
		{"SetColumn negative tag", func() error {
			return api.SetColumn(ses, tid, 1, buf, 4, engine.SetColumnNone, &SetInfo{ItagSequence: -1})
		}, engine.ErrRange},
		{"SetColumn long value size over the limit", func() error {
			return api.SetColumn(ses, tid, 1, nil, math.MaxInt32, engine.SetColumnSizeLV, nil)
		}, engine.ErrRange},
		{"RetrieveColumn negative offset", func() error {
			_, _, err := api.RetrieveColumn(ses, tid, 1, buf, 4, engine.RetrieveColumnNone, &RetrieveInfo{LongValueOffset: -1})
			return err
		}, engine.ErrRange},
		{"MakeKey normalized key too long", func() error {
			long := make([]byte, 300)
			return api.MakeKey(ses, tid, long, len(long), engine.MakeKeyNormalizedKey)
		}, engine.ErrRange},
		{"GotoBookmark too long", func() error {
			long := make([]byte, 300)
			return api.GotoBookmark(ses, tid, long, len(long))
		}, engine.ErrRange},
		{"IntersectIndexes nil", func() error { _, err := api.IntersectIndexes(ses, nil, engine.IntersectIndexesNone); return err }, engine.ErrNullArgument},
		{"CreateIndex2 conditional column without name", func() error {
			ics := []native.IndexCreate{{Name: "ix", Key: "+a\x00", ConditionalColumns: []native.ConditionalColumn{{}}}}
			return api.CreateIndex2(ses, tid, ics, 1)
		}, engine.ErrNullArgument},
		{"CreateIndex density over 100", func() error { return api.CreateIndex(ses, tid, "ix", "+a\x00", 0, 101, engine.CreateIndexNone) }, engine.ErrRange},
		{"NewColumnStream negative tag", func() error { _, err := api.NewColumnStream(ses, tid, 1, -1); return err }, engine.ErrRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, engine.ErrCallerParameter) {
				t.Fatalf("Expected a caller-parameter error, got %v", err)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("Expected kind %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestLongValueSizeLimit(t *testing.T) {
	opts := memtable.DefaultOptions()
	opts.LongValueMost = 16
	api, err := NewAPI(memtable.New(opts))
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	ses, err := api.BeginSession()
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	t.Cleanup(func() { _ = api.EndSession(ses) })
	tid, ids := tempTable(t, api, ses, native.ColumnDef{Coltyp: engine.ColtypLongBinary})
	if api.Limits().LongValueMost != 16 {
		t.Fatalf("Expected long value limit 16, got %d", api.Limits().LongValueMost)
	}

	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	if err := api.SetColumn(ses, tid, ids[0], nil, 17, engine.SetColumnSizeLV, nil); !errors.Is(err, engine.ErrRange) {
		t.Errorf("Expected range error for 17 bytes, got %v", err)
	}
	if err := api.SetColumn(ses, tid, ids[0], nil, 16, engine.SetColumnSizeLV, nil); err != nil {
		t.Fatalf("SetColumn of 16 bytes failed: %v", err)
	}
	if err := api.SetColumn(ses, tid, ids[0], []byte{1}, 1, engine.SetColumnAppendLV, nil); !engine.IsStatus(err, engine.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter growing past the limit, got %v", err)
	}
	if _, err := api.Update(ses, tid, nil, 0); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := api.TryMoveFirst(ses, tid); err != nil {
		t.Fatalf("TryMoveFirst failed: %v", err)
	}
	got, err := api.RetrieveColumnBytes(ses, tid, ids[0], engine.RetrieveColumnNone, nil)
	if err != nil {
		t.Fatalf("RetrieveColumnBytes failed: %v", err)
	}
	if !bytes.Equal(got, make([]byte, 16)) {
		t.Errorf("Expected 16 zero bytes, got %x", got)
	}
}

func TestEngineErrorsKeepCode(t *testing.T) {
	api, ses := newMemtable(t)
	_, err := api.OpenTable(ses, "missing")
	var engineErr *engine.Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("Expected *engine.Error, got %T", err)
	}
	if engineErr.Code != engine.ErrObjectNotFound || engineErr.Op != "JetOpenTable" || engineErr.Category != engine.CategoryTable {
		t.Errorf("Unexpected error fields %+v", engineErr)
	}
	if errors.Is(err, engine.ErrCallerParameter) {
		t.Errorf("An engine error must not match ErrCallerParameter")
	}
}

func TestTypedHelpers(t *testing.T) {
	api, ses := newMemtable(t)
	tid, ids := tempTable(t, api, ses,
		native.ColumnDef{Coltyp: engine.ColtypBit},
		native.ColumnDef{Coltyp: engine.ColtypUnsignedByte},
		native.ColumnDef{Coltyp: engine.ColtypShort},
		native.ColumnDef{Coltyp: engine.ColtypUnsignedShort},
		native.ColumnDef{Coltyp: engine.ColtypLong},
		native.ColumnDef{Coltyp: engine.ColtypUnsignedLong},
		native.ColumnDef{Coltyp: engine.ColtypCurrency},
		native.ColumnDef{Coltyp: engine.ColtypCurrency},
		native.ColumnDef{Coltyp: engine.ColtypIEEESingle},
		native.ColumnDef{Coltyp: engine.ColtypIEEEDouble},
		native.ColumnDef{Coltyp: engine.ColtypDateTime},
		native.ColumnDef{Coltyp: engine.ColtypText, CP: engine.CPASCII},
		native.ColumnDef{Coltyp: engine.ColtypLongBinary},
	)
	when := time.Date(2024, 2, 29, 13, 14, 15, 0, time.UTC)

	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	sets := []error{
		api.SetColumnBool(ses, tid, ids[0], true),
		api.SetColumnByte(ses, tid, ids[1], 0xAB),
		api.SetColumnInt16(ses, tid, ids[2], -1234),
		api.SetColumnUInt16(ses, tid, ids[3], 65000),
		api.SetColumnInt32(ses, tid, ids[4], -123456),
		api.SetColumnUInt32(ses, tid, ids[5], 4000000000),
		api.SetColumnInt64(ses, tid, ids[6], -1<<40),
		api.SetColumnUInt64(ses, tid, ids[7], 1<<63),
		api.SetColumnFloat32(ses, tid, ids[8], 3.5),
		api.SetColumnFloat64(ses, tid, ids[9], -0.125),
		api.SetColumnDateTime(ses, tid, ids[10], when),
		api.SetColumnString(ses, tid, ids[11], "café", engine.CPASCII),
		api.SetColumnBytes(ses, tid, ids[12], []byte{}),
	}
	for i, err := range sets {
		if err != nil {
			t.Fatalf("set %d failed: %v", i, err)
		}
	}
	bm := make([]byte, 16)
	n, err := api.Update(ses, tid, bm, len(bm))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := api.GotoBookmark(ses, tid, bm, n); err != nil {
		t.Fatalf("GotoBookmark failed: %v", err)
	}

	none := engine.RetrieveColumnNone
	if v, ok, err := api.RetrieveColumnAsBool(ses, tid, ids[0], none); err != nil || !ok || !v {
		t.Errorf("Bool = (%v, %v, %v)", v, ok, err)
	}
	if v, _, err := api.RetrieveColumnAsByte(ses, tid, ids[1], none); err != nil || v != 0xAB {
		t.Errorf("Byte = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsInt16(ses, tid, ids[2], none); err != nil || v != -1234 {
		t.Errorf("Int16 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsUInt16(ses, tid, ids[3], none); err != nil || v != 65000 {
		t.Errorf("UInt16 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsInt32(ses, tid, ids[4], none); err != nil || v != -123456 {
		t.Errorf("Int32 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsUInt32(ses, tid, ids[5], none); err != nil || v != 4000000000 {
		t.Errorf("UInt32 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsInt64(ses, tid, ids[6], none); err != nil || v != -1<<40 {
		t.Errorf("Int64 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsUInt64(ses, tid, ids[7], none); err != nil || v != 1<<63 {
		t.Errorf("UInt64 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsFloat32(ses, tid, ids[8], none); err != nil || v != 3.5 {
		t.Errorf("Float32 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsFloat64(ses, tid, ids[9], none); err != nil || v != -0.125 {
		t.Errorf("Float64 = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsDateTime(ses, tid, ids[10], none); err != nil || !v.Equal(when) {
		t.Errorf("DateTime = (%v, %v)", v, err)
	}
	if v, _, err := api.RetrieveColumnAsString(ses, tid, ids[11], engine.CPASCII, none); err != nil || v != "café" {
		t.Errorf("String = (%q, %v)", v, err)
	}
	if b, err := api.RetrieveColumnBytes(ses, tid, ids[12], none, nil); err != nil || b == nil || len(b) != 0 {
		t.Errorf("Bytes = (%v, %v), expected a zero-length value", b, err)
	}
	if raw, err := api.RetrieveColumnBytes(ses, tid, ids[11], none, nil); err != nil || len(raw) != 4 {
		t.Errorf("Expected 4 single-byte characters, got (%x, %v)", raw, err)
	}
}

func TestRetrieveColumnBytesRetries(t *testing.T) {
	api, ses := newMemtable(t)
	tid, ids := tempTable(t, api, ses, native.ColumnDef{Coltyp: engine.ColtypLongBinary})
	payload := bytes.Repeat([]byte{1, 2, 3}, retrieveProbe)

	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	if err := api.SetColumnBytes(ses, tid, ids[0], payload); err != nil {
		t.Fatalf("SetColumnBytes failed: %v", err)
	}
	got, err := api.RetrieveColumnBytes(ses, tid, ids[0], engine.RetrieveCopy, nil)
	if err != nil || !bytes.Equal(got, payload) {
		t.Errorf("Expected %d bytes from the copy buffer, got (%d, %v)", len(payload), len(got), err)
	}
}

func TestColumnStreamSeek(t *testing.T) {
	api, ses := newMemtable(t)
	tid, ids := tempTable(t, api, ses, native.ColumnDef{Coltyp: engine.ColtypLongBinary})
	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}

	s, err := api.NewColumnStream(ses, tid, ids[0], 0)
	if err != nil {
		t.Fatalf("NewColumnStream failed: %v", err)
	}
	if _, err := io.WriteString(s, "hello world"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if pos, err := s.Seek(-5, io.SeekEnd); err != nil || pos != 6 {
		t.Fatalf("Seek(-5, End) = (%d, %v)", pos, err)
	}
	if _, err := io.WriteString(s, "WORLD"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	got, err := io.ReadAll(s)
	if err != nil || string(got) != "hello WORLD" {
		t.Errorf("Expected %q, got (%q, %v)", "hello WORLD", got, err)
	}
	if _, err := s.Seek(-1, io.SeekStart); err == nil {
		t.Errorf("Expected an error seeking before the start")
	}
	if _, err := s.Seek(0, 42); err == nil {
		t.Errorf("Expected an error for an unknown whence")
	}
}

func TestTryMoveOnEmptyTable(t *testing.T) {
	api, ses := newMemtable(t)
	tid, _ := tempTable(t, api, ses, native.ColumnDef{Coltyp: engine.ColtypLong})

	for name, move := range map[string]func(engine.Session, engine.TableID) (bool, error){
		"First":    api.TryMoveFirst,
		"Last":     api.TryMoveLast,
		"Next":     api.TryMoveNext,
		"Previous": api.TryMovePrevious,
	} {
		if ok, err := move(ses, tid); err != nil || ok {
			t.Errorf("TryMove%s on an empty table = (%v, %v)", name, ok, err)
		}
	}
	if err := api.Move(ses, tid, engine.MoveFirst, engine.MoveNone); !engine.IsStatus(err, engine.ErrNoCurrentRecord) {
		t.Errorf("Expected ErrNoCurrentRecord from Move, got %v", err)
	}
}

func TestBookmarkHelpers(t *testing.T) {
	api, ses := newMemtable(t)
	tid, ids := tempTable(t, api, ses, native.ColumnDef{Coltyp: engine.ColtypLong})

	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	if err := api.SetColumnValue(ses, tid, ids[0], codec.Int32Value(5), engine.SetColumnNone); err != nil {
		t.Fatalf("SetColumnValue failed: %v", err)
	}
	saved := make([]byte, api.Limits().BookmarkMost)
	n, err := api.Update(ses, tid, saved, len(saved))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if ok, err := api.TryMoveFirst(ses, tid); err != nil || !ok {
		t.Fatalf("TryMoveFirst = (%v, %v)", ok, err)
	}

	bm, err := api.GetBookmarkBytes(ses, tid)
	if err != nil {
		t.Fatalf("GetBookmarkBytes failed: %v", err)
	}
	if len(bm) != n || cap(bm) != n {
		t.Errorf("Expected an exact-length bookmark of %d bytes, got len %d cap %d", n, len(bm), cap(bm))
	}
	if !bm.Equal(saved[:n]) {
		t.Errorf("Expected bookmark %x, got %x", saved[:n], bm)
	}

	small := make([]byte, 2)
	if _, err := api.GetBookmark(ses, tid, small, len(small)); !engine.IsStatus(err, engine.ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
}
