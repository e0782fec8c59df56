package jet

import (
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
)

// --------------------------------------------------------------------------
// Navigation
// --------------------------------------------------------------------------

func (a *API) Move(ses engine.Session, tid engine.TableID, offset int32, grbit engine.MoveGrbit) error {
	return a.check("JetMove", a.surface.Move(ses, tid, offset, grbit))
}

// GotoBookmark positions the cursor on the record named by the first size
// bytes of buf.
func (a *API) GotoBookmark(ses engine.Session, tid engine.TableID, buf []byte, size int) error {
	const op = "JetGotoBookmark"
	if buf == nil {
		return engine.NullError(op, "bookmark")
	}
	if err := bookmark.ValidateMost(op, "bookmark", buf, size, a.limits.BookmarkMost); err != nil {
		return err
	}
	return a.check(op, a.surface.GotoBookmark(ses, tid, buf[:size]))
}

// --------------------------------------------------------------------------
// Keys and ranges
// --------------------------------------------------------------------------

// MakeKey appends the first size bytes of data as the next key column of
// the search key. A nil data with size 0 is a null key column.
func (a *API) MakeKey(ses engine.Session, tid engine.TableID, data []byte, size int, grbit engine.MakeKeyGrbit) error {
	const op = "JetMakeKey"
	b, err := bookmark.Slice(op, "data", data, size)
	if err != nil {
		return err
	}
	if grbit&engine.MakeKeyNormalizedKey != 0 {
		if err := bookmark.ValidateMost(op, "data", data, size, a.limits.KeyMost); err != nil {
			return err
		}
	}
	return a.check(op, a.surface.MakeKey(ses, tid, b, grbit))
}

// Seek moves to the entry the search key selects. The returned status is
// WrnSeekNotEqual when an inequality seek landed on a different key.
func (a *API) Seek(ses engine.Session, tid engine.TableID, grbit engine.SeekGrbit) (engine.Status, error) {
	status := a.surface.Seek(ses, tid, grbit)
	if err := a.check("JetSeek", status); err != nil {
		return status, err
	}
	return status, nil
}

func (a *API) SetIndexRange(ses engine.Session, tid engine.TableID, grbit engine.SetIndexRangeGrbit) error {
	return a.check("JetSetIndexRange", a.surface.SetIndexRange(ses, tid, grbit))
}

// IndexRecordCount counts entries from the current one, stopping at most
// when most is not zero.
func (a *API) IndexRecordCount(ses engine.Session, tid engine.TableID, most int) (int, error) {
	const op = "JetIndexRecordCount"
	if most < 0 {
		return 0, engine.RangeError(op, "max", "negative maximum %d", most)
	}
	n, status := a.surface.IndexRecordCount(ses, tid, uint32(most))
	if err := a.check(op, status); err != nil {
		return 0, err
	}
	return int(n), nil
}

// IntersectIndexes intersects the current index ranges of the given
// cursors. At least two ranges are required. The caller must close the
// temporary table named by the returned record list.
func (a *API) IntersectIndexes(ses engine.Session, ranges []native.IndexRange, grbit engine.IntersectIndexesGrbit) (native.RecordList, error) {
	const op = "JetIntersectIndexes"
	if ranges == nil {
		return native.RecordList{}, engine.NullError(op, "ranges")
	}
	if len(ranges) < 2 {
		return native.RecordList{}, engine.RangeError(op, "ranges", "need at least 2 index ranges, have %d", len(ranges))
	}
	blk := a.layout.IndexRangesToNative(ranges)
	out := make([]byte, a.layout.Catalog().RecordList.Size)
	if err := a.check(op, a.surface.IntersectIndexes(ses, blk, uint32(len(ranges)), grbit, out)); err != nil {
		return native.RecordList{}, err
	}
	return a.layout.RecordListFromNative(out)
}
