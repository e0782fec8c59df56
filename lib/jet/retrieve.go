package jet

import (
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
)

// RetrieveInfo addresses part of a value, like SetInfo. An ItagSequence of
// 0 reads the first value.
type RetrieveInfo struct {
	LongValueOffset int
	ItagSequence    int
}

// RetrieveColumn reads a column of the current record (or of the copy
// buffer with engine.RetrieveCopy) into the first size bytes of data. It
// returns the number of bytes the value needs and the engine warning, if
// any: WrnColumnNull for a null column, WrnBufferTruncated when the value
// did not fit.
func (a *API) RetrieveColumn(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, data []byte, size int, grbit engine.RetrieveColumnGrbit, info *RetrieveInfo) (int, engine.Status, error) {
	const op = "JetRetrieveColumn"
	buf, err := bookmark.Slice(op, "data", data, size)
	if err != nil {
		return 0, engine.StatusSuccess, err
	}
	var ib, itag int
	if info != nil {
		ib, itag = info.LongValueOffset, info.ItagSequence
	}
	if ib < 0 {
		return 0, engine.StatusSuccess, engine.RangeError(op, "LongValueOffset", "negative offset %d", ib)
	}
	if itag < 0 {
		return 0, engine.StatusSuccess, engine.RangeError(op, "ItagSequence", "negative tag %d", itag)
	}
	actual, status := a.surface.RetrieveColumn(ses, tid, columnid, buf, grbit, uint32(ib), uint32(itag))
	if err := a.check(op, status); err != nil {
		return 0, status, err
	}
	return int(actual), status, nil
}

// EnumerateColumns enumerates the first count selections of ids, or every
// column holding a value when ids is nil and count is 0. Result memory comes
// from alloc. maxDataSize caps each returned value, 0 for no cap.
func (a *API) EnumerateColumns(ses engine.Session, tid engine.TableID, ids []native.EnumColumnID, count int, alloc engine.Allocator, maxDataSize int, grbit engine.EnumerateColumnsGrbit) ([]native.EnumColumn, error) {
	const op = "JetEnumerateColumns"
	if alloc == nil {
		return nil, engine.NullError(op, "allocator")
	}
	if maxDataSize < 0 {
		return nil, engine.RangeError(op, "maxDataSize", "negative size %d", maxDataSize)
	}
	if ids == nil && count != 0 {
		return nil, engine.RangeError(op, "count", "nil column ids with count %d", count)
	}
	if err := checkCount(op, "count", count, len(ids)); err != nil {
		return nil, err
	}
	var blk *engine.Block
	if count > 0 {
		var err error
		if blk, err = a.layout.EnumColumnIDsToNative(op, ids[:count]); err != nil {
			return nil, err
		}
	}
	out, n, status := a.surface.EnumerateColumns(ses, tid, blk, uint32(count), alloc, uint32(maxDataSize), grbit)
	if err := a.check(op, status); err != nil {
		return nil, err
	}
	return a.layout.EnumColumnsFromNative(out, int(n))
}

// GetBookmark writes the bookmark of the current record into the first size
// bytes of buf and returns its length.
func (a *API) GetBookmark(ses engine.Session, tid engine.TableID, buf []byte, size int) (int, error) {
	const op = "JetGetBookmark"
	b, err := bookmark.Slice(op, "bookmark", buf, size)
	if err != nil {
		return 0, err
	}
	actual, status := a.surface.GetBookmark(ses, tid, b)
	if err := a.check(op, status); err != nil {
		return int(actual), err
	}
	return int(actual), nil
}

// GetBookmarkBytes returns an owned copy of the current bookmark, exactly as
// long as the bookmark.
func (a *API) GetBookmarkBytes(ses engine.Session, tid engine.TableID) (bookmark.Bookmark, error) {
	buf := make([]byte, a.limits.BookmarkMost)
	n, err := a.GetBookmark(ses, tid, buf, len(buf))
	if err != nil {
		return nil, err
	}
	return bookmark.Clone(buf, n), nil
}

// RetrieveKey writes the normalized key of the current entry (or the search
// key with engine.RetrieveKeyCopy) into the first size bytes of buf and
// returns the key length.
func (a *API) RetrieveKey(ses engine.Session, tid engine.TableID, buf []byte, size int, grbit engine.RetrieveKeyGrbit) (int, error) {
	const op = "JetRetrieveKey"
	b, err := bookmark.Slice(op, "key", buf, size)
	if err != nil {
		return 0, err
	}
	actual, status := a.surface.RetrieveKey(ses, tid, b, grbit)
	if err := a.check(op, status); err != nil {
		return 0, err
	}
	return int(actual), nil
}

// RetrieveKeyBytes returns an owned copy of the key RetrieveKey reports.
func (a *API) RetrieveKeyBytes(ses engine.Session, tid engine.TableID, grbit engine.RetrieveKeyGrbit) ([]byte, error) {
	buf := make([]byte, a.limits.KeyMost)
	n, err := a.RetrieveKey(ses, tid, buf, len(buf), grbit)
	if err != nil {
		return nil, err
	}
	return bookmark.Clone(buf, n), nil
}
