package jet

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
)

// --------------------------------------------------------------------------
// Tables
// --------------------------------------------------------------------------

func (a *API) CreateTable(ses engine.Session, table string) (engine.TableID, error) {
	const op = "JetCreateTable"
	n, err := name(op, "table", table)
	if err != nil {
		return engine.NilTable, err
	}
	tid, status := a.surface.CreateTable(ses, n)
	if err := a.check(op, status); err != nil {
		return engine.NilTable, err
	}
	return tid, nil
}

func (a *API) OpenTable(ses engine.Session, table string) (engine.TableID, error) {
	const op = "JetOpenTable"
	n, err := name(op, "table", table)
	if err != nil {
		return engine.NilTable, err
	}
	tid, status := a.surface.OpenTable(ses, n)
	if err := a.check(op, status); err != nil {
		return engine.NilTable, err
	}
	return tid, nil
}

// OpenTempTable creates a temporary table with the given columns and
// returns the ids assigned to them, in order.
func (a *API) OpenTempTable(ses engine.Session, columns []native.ColumnDef, grbit engine.TempTableGrbit) (engine.TableID, []engine.ColumnID, error) {
	const op = "JetOpenTempTable"
	if len(columns) == 0 {
		return engine.NilTable, nil, engine.NullError(op, "columns")
	}
	blk, err := a.layout.ColumnDefsToNative(op, columns)
	if err != nil {
		return engine.NilTable, nil, err
	}
	ids := make([]engine.ColumnID, len(columns))
	tid, status := a.surface.OpenTempTable(ses, blk, uint32(len(columns)), grbit, ids)
	if err := a.check(op, status); err != nil {
		return engine.NilTable, nil, err
	}
	return tid, ids, nil
}

func (a *API) CloseTable(ses engine.Session, tid engine.TableID) error {
	return a.check("JetCloseTable", a.surface.CloseTable(ses, tid))
}

// --------------------------------------------------------------------------
// Columns
// --------------------------------------------------------------------------

// AddColumn adds a column. The default value, if any, travels in
// def.Default / def.DefaultSize.
func (a *API) AddColumn(ses engine.Session, tid engine.TableID, column string, def *native.ColumnDef) (engine.ColumnID, error) {
	const op = "JetAddColumn"
	n, err := name(op, "column", column)
	if err != nil {
		return 0, err
	}
	if def == nil {
		return 0, engine.NullError(op, "columndef")
	}
	blk, err := a.layout.ColumnDefToNative(op, *def)
	if err != nil {
		return 0, err
	}
	id, status := a.surface.AddColumn(ses, tid, n, blk, def.DefaultValue())
	if err := a.check(op, status); err != nil {
		return 0, err
	}
	return id, nil
}

func (a *API) DeleteColumn(ses engine.Session, tid engine.TableID, column string) error {
	const op = "JetDeleteColumn"
	n, err := name(op, "column", column)
	if err != nil {
		return err
	}
	return a.check(op, a.surface.DeleteColumn(ses, tid, n))
}

// GetTableColumnInfo returns the definition of a column, its id included.
func (a *API) GetTableColumnInfo(ses engine.Session, tid engine.TableID, column string) (native.ColumnDef, error) {
	const op = "JetGetTableColumnInfo"
	n, err := name(op, "column", column)
	if err != nil {
		return native.ColumnDef{}, err
	}
	buf := make([]byte, a.layout.Catalog().ColumnDef.Size)
	if err := a.check(op, a.surface.GetTableColumnInfo(ses, tid, n, buf)); err != nil {
		return native.ColumnDef{}, err
	}
	return a.layout.ColumnDefFromNative(buf)
}

// --------------------------------------------------------------------------
// Indexes
// --------------------------------------------------------------------------

// CreateIndex creates one index from a key description such as
// "+name\x00-age\x00". keyLength counts characters including the final
// terminator; zero derives it from key.
func (a *API) CreateIndex(ses engine.Session, tid engine.TableID, index, key string, keyLength, density int, grbit engine.CreateIndexGrbit) error {
	ics := []native.IndexCreate{{Name: index, Key: key, KeyLength: keyLength, Density: density, Grbit: grbit}}
	return a.createIndexes("JetCreateIndex", ses, tid, ics)
}

// CreateIndex2 creates the first count indexes of ics in one call. The
// per-index results are written back to ics[i].Err.
func (a *API) CreateIndex2(ses engine.Session, tid engine.TableID, ics []native.IndexCreate, count int) error {
	const op = "JetCreateIndex2"
	if ics == nil {
		return engine.NullError(op, "indexcreates")
	}
	if err := checkCount(op, "count", count, len(ics)); err != nil {
		return err
	}
	return a.createIndexes(op, ses, tid, ics[:count])
}

func (a *API) createIndexes(op string, ses engine.Session, tid engine.TableID, ics []native.IndexCreate) error {
	blk, err := a.layout.IndexCreatesToNative(op, ics)
	if err != nil {
		return err
	}
	if err := a.layout.BindIndexCreates(blk, ics); err != nil {
		return err
	}
	status := a.surface.CreateIndex(ses, tid, blk, uint32(len(ics)))
	if err := a.layout.ReadBackIndexCreates(blk, ics); err != nil {
		return err
	}
	return a.check(op, status)
}

func (a *API) DeleteIndex(ses engine.Session, tid engine.TableID, index string) error {
	const op = "JetDeleteIndex"
	n, err := name(op, "index", index)
	if err != nil {
		return err
	}
	return a.check(op, a.surface.DeleteIndex(ses, tid, n))
}

// SetCurrentIndex selects an index by name. An empty name selects
// bookmark order.
func (a *API) SetCurrentIndex(ses engine.Session, tid engine.TableID, index string) error {
	const op = "JetSetCurrentIndex"
	var n []byte
	if index != "" {
		var err error
		if n, err = name(op, "index", index); err != nil {
			return err
		}
	}
	return a.check(op, a.surface.SetCurrentIndex(ses, tid, n))
}
