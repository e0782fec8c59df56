package jet

import (
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
)

// SetInfo addresses part of a value: a byte offset into a long value and a
// 1-based value number of a multi-valued column (0 appends).
type SetInfo struct {
	LongValueOffset int
	ItagSequence    int
}

func (a *API) PrepareUpdate(ses engine.Session, tid engine.TableID, prep engine.Prep) error {
	return a.check("JetPrepareUpdate", a.surface.PrepareUpdate(ses, tid, prep))
}

// Update saves the prepared update. When buf is not nil the bookmark of the
// record is written into its first size bytes and the bookmark length is
// returned.
func (a *API) Update(ses engine.Session, tid engine.TableID, buf []byte, size int) (int, error) {
	const op = "JetUpdate"
	b, err := bookmark.Slice(op, "bookmark", buf, size)
	if err != nil {
		return 0, err
	}
	actual, status := a.surface.Update(ses, tid, b)
	if err := a.check(op, status); err != nil {
		return int(actual), err
	}
	if b == nil {
		return 0, nil
	}
	return int(actual), nil
}

func (a *API) Delete(ses engine.Session, tid engine.TableID) error {
	return a.check("JetDelete", a.surface.Delete(ses, tid))
}

// SetColumn stages the first size bytes of data. A nil data with size 0
// sets the column to null; an empty data with SetColumnZeroLength stores a
// zero-length value. With SetColumnSizeLV, size is the new long value
// length and data may be nil; it may not exceed Limits().LongValueMost.
func (a *API) SetColumn(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, data []byte, size int, grbit engine.SetColumnGrbit, info *SetInfo) error {
	const op = "JetSetColumn"
	sc := native.SetColumn{ColumnID: columnid, Data: data, DataSize: size, Grbit: grbit}
	if info != nil {
		sc.LongValueOffset, sc.ItagSequence = info.LongValueOffset, info.ItagSequence
	}
	if err := sc.Validate(op); err != nil {
		return err
	}
	if grbit&engine.SetColumnSizeLV != 0 && size > a.limits.LongValueMost {
		return engine.RangeError(op, "size", "long value size %d exceeds %d", size, a.limits.LongValueMost)
	}
	var payload []byte
	switch {
	case data != nil:
		payload = data[:size]
	case grbit&engine.SetColumnSizeLV != 0:
		payload = make([]byte, size)
	}
	return a.check(op, a.surface.SetColumn(ses, tid, columnid, payload, grbit, uint32(sc.LongValueOffset), uint32(sc.ItagSequence)))
}

// SetColumns stages the first count requests of scs in one call. Per-entry
// results are written back to scs[i].Err.
func (a *API) SetColumns(ses engine.Session, tid engine.TableID, scs []native.SetColumn, count int) error {
	const op = "JetSetColumns"
	if scs == nil {
		return engine.NullError(op, "setcolumns")
	}
	if err := checkCount(op, "count", count, len(scs)); err != nil {
		return err
	}
	scs = scs[:count]
	blk, err := a.layout.SetColumnsToNative(op, scs)
	if err != nil {
		return err
	}
	if err := a.layout.BindSetColumns(blk, scs); err != nil {
		return err
	}
	status := a.surface.SetColumns(ses, tid, blk, uint32(count))
	if err := a.layout.ReadBackSetColumns(blk, scs); err != nil {
		return err
	}
	return a.check(op, status)
}

// EscrowUpdate adds the first deltaSize bytes of delta to an escrow column
// of the current record. The previous value is written into previous when
// it is not nil; the number of bytes it needs is returned.
func (a *API) EscrowUpdate(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, delta []byte, deltaSize int, previous []byte, previousSize int, grbit engine.EscrowUpdateGrbit) (int, error) {
	const op = "JetEscrowUpdate"
	if delta == nil {
		return 0, engine.NullError(op, "delta")
	}
	d, err := bookmark.Slice(op, "delta", delta, deltaSize)
	if err != nil {
		return 0, err
	}
	p, err := bookmark.Slice(op, "previous", previous, previousSize)
	if err != nil {
		return 0, err
	}
	actual, status := a.surface.EscrowUpdate(ses, tid, columnid, d, p, grbit)
	if err := a.check(op, status); err != nil {
		return 0, err
	}
	return int(actual), nil
}
