package native

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

var layouts = map[string]Layout{
	"32-bit": {PointerSize: 4},
	"64-bit": {PointerSize: 8},
}

func TestShapeSizes(t *testing.T) {
	want := map[string]map[int]int{
		"JET_COLUMNDEF":             {4: 28, 8: 28},
		"JET_CONDITIONALCOLUMN":     {4: 12, 8: 24},
		"JET_INDEXCREATE":           {4: 32, 8: 48},
		"JET_INDEXCREATE(extended)": {4: 44, 8: 72},
		"JET_SETCOLUMN":             {4: 32, 8: 40},
		"JET_INDEXRANGE":            {4: 12, 8: 24},
		"JET_ENUMCOLUMNID":          {4: 16, 8: 24},
		"JET_ENUMCOLUMNVALUE":       {4: 20, 8: 24},
		"JET_ENUMCOLUMN":            {4: 28, 8: 40},
		"JET_RECORDLIST":            {4: 16, 8: 24},
	}
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			for _, s := range l.Catalog().Shapes() {
				if got, exp := s.Size, want[s.Name][l.PointerSize]; got != exp {
					t.Errorf("%s: size %d, want %d", s.Name, got, exp)
				}
				for _, f := range s.Fields() {
					if f.Offset%f.Size != 0 {
						t.Errorf("%s.%s at %d is not aligned to %d", s.Name, f.Name, f.Offset, f.Size)
					}
				}
			}
		})
	}
}

func TestLayoutValidate(t *testing.T) {
	if err := Host.Validate(); err != nil {
		t.Fatalf("host layout invalid: %v", err)
	}
	if err := (Layout{PointerSize: 2}).Validate(); !errors.Is(err, engine.ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
}

func TestIndexCreateVariantSelection(t *testing.T) {
	base := IndexCreate{Name: "by_name", Key: "+name\x00", Density: 80}

	tests := []struct {
		name     string
		mutate   func(*IndexCreate)
		extended bool
	}{
		{"plain", func(*IndexCreate) {}, false},
		{"key-size limit", func(ic *IndexCreate) { ic.VarSegMac = 16 }, true},
		{"conditional columns", func(ic *IndexCreate) {
			ic.ConditionalColumns = []ConditionalColumn{{Name: "deleted", Grbit: engine.ConditionalColumnMustBeNull}}
		}, true},
		{"caller sets the bit", func(ic *IndexCreate) { ic.Grbit |= indexCreateExtended | engine.CreateIndexUnique }, false},
		{"caller sets the bit on extended", func(ic *IndexCreate) { ic.Grbit |= indexCreateExtended; ic.VarSegMac = 4 }, true},
	}

	for lname, l := range layouts {
		c := l.Catalog()
		for _, tc := range tests {
			t.Run(lname+"/"+tc.name, func(t *testing.T) {
				ic := base
				tc.mutate(&ic)
				blk, err := l.IndexCreateToNative("test", ic)
				if err != nil {
					t.Fatalf("IndexCreateToNative failed: %v", err)
				}

				wantShape := c.IndexCreate
				if tc.extended {
					wantShape = c.IndexCreateExtended
				}
				if blk.Len() != wantShape.Size {
					t.Fatalf("image is %d bytes, want %d", blk.Len(), wantShape.Size)
				}
				r := wantShape.At(blk, 0)
				if int(r.U32(fCbStruct)) != blk.Len() {
					t.Errorf("cbStruct %d, image %d bytes", r.U32(fCbStruct), blk.Len())
				}
				bit := engine.CreateIndexGrbit(r.U32(fGrbit))&indexCreateExtended != 0
				if bit != tc.extended {
					t.Errorf("extended bit = %v, want %v", bit, tc.extended)
				}
				if r.Ref(fIndexName) != nil || r.Ref(fKey) != nil {
					t.Errorf("string references must be empty before binding")
				}
			})
		}
	}
}

func TestIndexCreateValidation(t *testing.T) {
	tests := map[string]struct {
		ic   IndexCreate
		kind error
	}{
		"negative density":   {IndexCreate{Name: "i", Key: "+a\x00", Density: -1}, engine.ErrRange},
		"density over 100":   {IndexCreate{Name: "i", Key: "+a\x00", Density: 101}, engine.ErrRange},
		"no name":            {IndexCreate{Key: "+a\x00"}, engine.ErrNullArgument},
		"no key":             {IndexCreate{Name: "i"}, engine.ErrNullArgument},
		"negative key len":   {IndexCreate{Name: "i", Key: "+a\x00", KeyLength: -1}, engine.ErrRange},
		"key len too long":   {IndexCreate{Name: "i", Key: "+a\x00", KeyLength: 5}, engine.ErrRange},
		"negative varsegmac": {IndexCreate{Name: "i", Key: "+a\x00", VarSegMac: -1}, engine.ErrRange},
		"unnamed condition": {IndexCreate{Name: "i", Key: "+a\x00",
			ConditionalColumns: []ConditionalColumn{{}}}, engine.ErrNullArgument},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Host.IndexCreateToNative("JetCreateIndex", tc.ic)
			if !errors.Is(err, engine.ErrCallerParameter) || !errors.Is(err, tc.kind) {
				t.Errorf("expected caller parameter error of kind %v, got %v", tc.kind, err)
			}
		})
	}

	ok := IndexCreate{Name: "i", Key: "+a\x00", KeyLength: 4}
	if _, err := Host.IndexCreateToNative("JetCreateIndex", ok); err != nil {
		t.Errorf("key length equal to description length must pass: %v", err)
	}
}

func TestIndexCreateRoundTrip(t *testing.T) {
	ics := []IndexCreate{
		{Name: "primary", Key: "+id\x00", Grbit: engine.CreateIndexPrimary, Density: 100},
		{Name: "by_name", Key: "+name\x00-age\x00", Grbit: engine.CreateIndexUnique, VarSegMac: 8,
			ConditionalColumns: []ConditionalColumn{{Name: "active", Grbit: engine.ConditionalColumnMustBeNonNull}}},
		{Name: "by_age", Key: "-age\x00", Lcid: 1033},
	}
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			blk, err := l.IndexCreatesToNative("test", ics)
			if err != nil {
				t.Fatal(err)
			}
			c := l.Catalog()
			if want := 2*c.IndexCreate.Size + c.IndexCreateExtended.Size; blk.Len() != want {
				t.Errorf("array is %d bytes, want %d", blk.Len(), want)
			}
			if err := l.BindIndexCreates(blk, ics); err != nil {
				t.Fatal(err)
			}
			if err := l.SetIndexCreateErr(blk, len(ics), 2, engine.ErrIndexDuplicate); err != nil {
				t.Fatal(err)
			}
			got, err := l.IndexCreatesFromNative(blk, len(ics))
			if err != nil {
				t.Fatal(err)
			}
			want := make([]IndexCreate, len(ics))
			copy(want, ics)
			for i := range want {
				want[i].KeyLength = want[i].effectiveKeyLength()
			}
			want[2].Err = engine.ErrIndexDuplicate
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
			}

			back := make([]IndexCreate, len(ics))
			copy(back, ics)
			if err := l.ReadBackIndexCreates(blk, back); err != nil || back[2].Err != engine.ErrIndexDuplicate {
				t.Errorf("read back: %v, err field %v", err, back[2].Err)
			}
		})
	}
}

func TestBoundKeyIsDoubleNullTerminated(t *testing.T) {
	ic := IndexCreate{Name: "i", Key: "+a\x00"}
	blk, _ := Host.IndexCreateToNative("test", ic)
	if err := Host.BindIndexCreates(blk, []IndexCreate{ic}); err != nil {
		t.Fatal(err)
	}
	key := Host.Catalog().IndexCreate.At(blk, 0).Ref(fKey).Bytes
	if len(key) != 8 {
		t.Fatalf("key is %d bytes, want 8", len(key))
	}
	if !bytes.Equal(key[4:], []byte{0, 0, 0, 0}) {
		t.Errorf("key is not double-null terminated: %x", key)
	}
}

func TestKeyLengthIsCopiedUnchanged(t *testing.T) {
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			for _, ic := range []IndexCreate{
				{Name: "i", Key: "+abc\x00-de\x00", KeyLength: 8},
				{Name: "i", Key: "+a\x00"},
			} {
				blk, err := l.IndexCreateToNative("test", ic)
				if err != nil {
					t.Fatal(err)
				}
				if got := l.Catalog().IndexCreate.At(blk, 0).U32(fCbKey); int(got) != ic.effectiveKeyLength() {
					t.Errorf("cbKey is %d, want %d", got, ic.effectiveKeyLength())
				}
				if err := l.BindIndexCreates(blk, []IndexCreate{ic}); err != nil {
					t.Fatal(err)
				}
				if key := l.Catalog().IndexCreate.At(blk, 0).Ref(fKey).Bytes; len(key) != 2*ic.effectiveKeyLength() {
					t.Errorf("bound key is %d bytes, want %d", len(key), 2*ic.effectiveKeyLength())
				}
			}
		})
	}
}

func TestUnsupportedVersion(t *testing.T) {
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			b := make([]byte, 64)
			hostOrder.PutUint32(b, 13)

			if _, err := l.IndexCreatesFromNative(engine.BytesBlock(b), 1); !errors.Is(err, engine.ErrUnsupportedVersion) {
				t.Errorf("IndexCreatesFromNative: expected ErrUnsupportedVersion, got %v", err)
			}
			if _, err := l.ColumnDefFromNative(b); !errors.Is(err, engine.ErrUnsupportedVersion) {
				t.Errorf("ColumnDefFromNative: expected ErrUnsupportedVersion, got %v", err)
			}
			if _, err := l.RecordListFromNative(b); !errors.Is(err, engine.ErrUnsupportedVersion) {
				t.Errorf("RecordListFromNative: expected ErrUnsupportedVersion, got %v", err)
			}
			var verr *VersionError
			_, err := l.SetColumnsFromNative(engine.BytesBlock(b), 1)
			if !errors.As(err, &verr) || verr.Size != 13 {
				t.Errorf("SetColumnsFromNative: expected VersionError with size 13, got %v", err)
			}
		})
	}
}

func TestColumnDef(t *testing.T) {
	cd := ColumnDef{Coltyp: engine.ColtypText, CP: engine.CPUnicode, MaxLength: 255, Grbit: engine.ColumndefTagged}
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			blk, err := l.ColumnDefToNative("test", cd)
			if err != nil {
				t.Fatal(err)
			}
			got, err := l.ColumnDefFromNative(blk.Bytes)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, cd) {
				t.Errorf("got %+v, want %+v", got, cd)
			}
		})
	}

	bad := map[string]ColumnDef{
		"negative default size": {DefaultSize: -1, Default: []byte{1}},
		"nil default with size": {DefaultSize: 1},
		"default size too long": {DefaultSize: 3, Default: []byte{1, 2}},
	}
	for name, cd := range bad {
		if _, err := Host.ColumnDefToNative("JetAddColumn", cd); !errors.Is(err, engine.ErrRange) {
			t.Errorf("%s: expected ErrRange, got %v", name, err)
		}
	}
	if err := (ColumnDef{Default: []byte{1, 2}, DefaultSize: 2}).Validate("x"); err != nil {
		t.Errorf("exact default size must pass: %v", err)
	}
}

func TestSetColumns(t *testing.T) {
	scs := []SetColumn{
		{ColumnID: 1, Data: []byte{1, 2, 3, 4}, DataSize: 4},
		{ColumnID: 2, Data: nil, DataSize: 0},
		{ColumnID: 3, Data: []byte{}, DataSize: 0, Grbit: engine.SetColumnZeroLength},
		{ColumnID: 4, Data: nil, DataSize: 100, Grbit: engine.SetColumnSizeLV},
		{ColumnID: 5, Data: []byte{9, 9, 9}, DataSize: 2, ItagSequence: 2},
	}
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			blk, err := l.SetColumnsToNative("test", scs)
			if err != nil {
				t.Fatal(err)
			}
			if err := l.BindSetColumns(blk, scs); err != nil {
				t.Fatal(err)
			}
			got, err := l.SetColumnsFromNative(blk, len(scs))
			if err != nil {
				t.Fatal(err)
			}
			if got[1].Data != nil {
				t.Errorf("nil data must stay a null reference")
			}
			if got[2].Data == nil || len(got[2].Data) != 0 {
				t.Errorf("empty data must stay a zero-length buffer, got %v", got[2].Data)
			}
			if !bytes.Equal(got[4].Data, []byte{9, 9}) || got[4].ItagSequence != 2 {
				t.Errorf("entry 4 = %+v", got[4])
			}
			if got[3].DataSize != 100 {
				t.Errorf("size-as-null length lost: %+v", got[3])
			}
		})
	}

	bad := map[string]SetColumn{
		"negative size":     {Data: []byte{1}, DataSize: -1},
		"size exceeds data": {Data: []byte{1}, DataSize: 2},
		"nil with size":     {DataSize: 4},
		"negative offset":   {LongValueOffset: -1},
		"negative itag":     {ItagSequence: -1},
	}
	for name, sc := range bad {
		if _, err := Host.SetColumnsToNative("JetSetColumns", []SetColumn{sc}); !errors.Is(err, engine.ErrRange) {
			t.Errorf("%s: expected ErrRange, got %v", name, err)
		}
	}
}

func TestEnumColumns(t *testing.T) {
	ecs := []EnumColumn{
		{ColumnID: 1, Values: []EnumColumnValue{{ItagSequence: 1, Data: []byte("a")}, {ItagSequence: 2, Data: []byte("bc")}}},
		{ColumnID: 2, Err: engine.WrnColumnNull},
		{ColumnID: 3, Values: []EnumColumnValue{{ItagSequence: 1, Data: []byte{7}}}, Data: []byte{7}},
	}
	allocated := 0
	a := func(size int) []byte { allocated += size; return make([]byte, size) }

	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			blk, err := l.EnumColumnsToNative(ecs, a)
			if err != nil {
				t.Fatal(err)
			}
			got, err := l.EnumColumnsFromNative(blk, len(ecs))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, ecs) {
				t.Errorf("got %+v, want %+v", got, ecs)
			}
		})
	}
	if allocated == 0 {
		t.Errorf("allocator was never used")
	}

	short := func(size int) []byte { return nil }
	if _, err := Host.EnumColumnsToNative(ecs, short); !errors.Is(err, ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
}

func TestEnumColumnIDs(t *testing.T) {
	ids := []EnumColumnID{{ColumnID: 4}, {ColumnID: 5, TagSequences: []int{1, 3}}}
	blk, err := Host.EnumColumnIDsToNative("test", ids)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Host.EnumColumnIDsFromNative(blk, len(ids))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("got %+v, want %+v", got, ids)
	}
	if _, err := Host.EnumColumnIDsToNative("test", []EnumColumnID{{TagSequences: []int{-1}}}); !errors.Is(err, engine.ErrRange) {
		t.Errorf("negative tag: expected ErrRange, got %v", err)
	}
}

func TestIndexRangesAndRecordList(t *testing.T) {
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			ranges := []IndexRange{{TableID: 7}, {TableID: 9}}
			blk := l.IndexRangesToNative(ranges)
			got, err := l.IndexRangesFromNative(blk, 2)
			if err != nil {
				t.Fatal(err)
			}
			for i, r := range got {
				if r.TableID != ranges[i].TableID || r.Grbit&engine.IndexRangeTableID == 0 {
					t.Errorf("range %d = %+v", i, r)
				}
			}

			buf := make([]byte, l.Catalog().RecordList.Size)
			rl := RecordList{TableID: 42, Count: 3, BookmarkColumn: 1}
			if err := l.PutRecordList(buf, rl); err != nil {
				t.Fatal(err)
			}
			back, err := l.RecordListFromNative(buf)
			if err != nil || back != rl {
				t.Errorf("record list = %+v, %v", back, err)
			}
			if err := l.PutRecordList(buf[:4], rl); !errors.Is(err, engine.ErrRange) {
				t.Errorf("short buffer: expected ErrRange, got %v", err)
			}
		})
	}
}
