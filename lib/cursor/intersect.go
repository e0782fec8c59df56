package cursor

import (
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/hashicorp/go-multierror"
)

// Intersection walks the bookmarks of the records present in every range
// of an index intersection, in bookmark order.
type Intersection struct {
	api     *jet.API
	ses     engine.Session
	list    native.RecordList
	started bool
	done    bool
	closed  bool
	current bookmark.Bookmark
	err     error
}

// IntersectIndexes intersects the current index ranges of the given
// cursors. Fewer than two ranges fail before the engine is called. Close
// releases the temporary table holding the result.
func IntersectIndexes(api *jet.API, ses engine.Session, tableids ...engine.TableID) (*Intersection, error) {
	if len(tableids) < 2 {
		return nil, engine.RangeError("cursor.IntersectIndexes", "tableids", "need at least 2 index ranges, have %d", len(tableids))
	}
	ranges := make([]native.IndexRange, len(tableids))
	for i, tid := range tableids {
		ranges[i] = native.IndexRange{TableID: tid}
	}
	list, err := api.IntersectIndexes(ses, ranges, engine.IntersectIndexesNone)
	if err != nil {
		return nil, err
	}
	return &Intersection{api: api, ses: ses, list: list}, nil
}

// Count returns the number of records in the intersection.
func (it *Intersection) Count() int { return it.list.Count }

func (it *Intersection) Next() bool {
	if it.closed || it.done {
		return false
	}
	var (
		ok  bool
		err error
	)
	if it.started {
		ok, err = it.api.TryMoveNext(it.ses, it.list.TableID)
	} else {
		ok, err = it.api.TryMoveFirst(it.ses, it.list.TableID)
		it.started = true
	}
	if err != nil || !ok {
		it.err = err
		it.current = nil
		it.done = true
		return false
	}
	b, err := it.api.RetrieveColumnBytes(it.ses, it.list.TableID, it.list.BookmarkColumn, engine.RetrieveColumnNone, nil)
	if err != nil {
		it.err = err
		it.current = nil
		it.done = true
		return false
	}
	it.current = bookmark.Bookmark(b)
	return true
}

// Bookmark returns the bookmark of the current result record.
func (it *Intersection) Bookmark() bookmark.Bookmark { return it.current }

func (it *Intersection) Err() error { return it.err }

// Close closes the temporary table. An iteration error is reported along
// with a failing close.
func (it *Intersection) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	var result *multierror.Error
	if err := it.api.CloseTable(it.ses, it.list.TableID); err != nil {
		log.Debugf("closing intersection result %s: %v", it.list.TableID, err)
		result = multierror.Append(result, err)
		if it.err != nil {
			result = multierror.Append(result, it.err)
		}
	}
	return result.ErrorOrNil()
}
