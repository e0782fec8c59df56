package testing

import (
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/DamirAinullin/ManagedEsent/lib/scope"
	"testing"
)

// RunEngineBenchmarks measures the checked call path against an engine.
func RunEngineBenchmarks(b *testing.B, name string, factory EngineFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Insert", func(b *testing.B) {
			api, ses, tid, id := benchTable(b, factory)
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
		})

		b.Run("InsertBatchedColumns", func(b *testing.B) {
			api, ses, tid, id := benchTable(b, factory)
			data := make([]byte, 4)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
					b.Fatalf("PrepareUpdate failed: %v", err)
				}
				scs := []native.SetColumn{{ColumnID: id, Data: data, DataSize: len(data)}}
				if err := api.SetColumns(ses, tid, scs, len(scs)); err != nil {
					b.Fatalf("SetColumns failed: %v", err)
				}
				if _, err := api.Update(ses, tid, nil, 0); err != nil {
					b.Fatalf("Update failed: %v", err)
				}
			}
		})

		b.Run("Seek", func(b *testing.B) {
			api, ses, tid, id := benchTable(b, factory)
			if err := api.CreateIndex(ses, tid, "byN", "+n\x00", 0, 100, engine.CreateIndexNone); err != nil {
				b.Fatalf("CreateIndex failed: %v", err)
			}
			const records = 1000
			for i := 0; i < records; i++ {
				if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
					b.Fatalf("PrepareUpdate failed: %v", err)
				}
				if err := api.SetColumnInt32(ses, tid, id, int32(i)); err != nil {
					b.Fatalf("SetColumnInt32 failed: %v", err)
				}
				if _, err := api.Update(ses, tid, nil, 0); err != nil {
					b.Fatalf("Update failed: %v", err)
				}
			}
			if err := api.SetCurrentIndex(ses, tid, "byN"); err != nil {
				b.Fatalf("SetCurrentIndex failed: %v", err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := api.MakeKeyValue(ses, tid, codec.Int32Value(int32(i%records)), engine.MakeKeyNewKey); err != nil {
					b.Fatalf("MakeKey failed: %v", err)
				}
				if _, err := api.Seek(ses, tid, engine.SeekEQ); err != nil {
					b.Fatalf("Seek failed: %v", err)
				}
			}
		})

		b.Run("RetrieveColumn", func(b *testing.B) {
			api, ses, tid, id := benchTable(b, factory)
			upd, err := scope.NewUpdate(api, ses, tid, engine.PrepInsert)
			if err != nil {
				b.Fatalf("NewUpdate failed: %v", err)
			}
			if err := upd.SetValue(id, codec.Int32Value(7)); err != nil {
				b.Fatalf("SetValue failed: %v", err)
			}
			if err := upd.SaveAndGotoBookmark(); err != nil {
				b.Fatalf("SaveAndGotoBookmark failed: %v", err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := api.RetrieveColumnAsInt32(ses, tid, id, engine.RetrieveColumnNone); err != nil {
					b.Fatalf("RetrieveColumnAsInt32 failed: %v", err)
				}
			}
		})
	})
}

func benchTable(b *testing.B, factory EngineFactory) (*jet.API, engine.Session, engine.TableID, engine.ColumnID) {
	b.Helper()
	api, err := jet.NewAPI(factory())
	if err != nil {
		b.Fatalf("NewAPI failed: %v", err)
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
	return api, ses, tid, id
}
