package jet

import (
	"errors"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"io"
)

// ColumnStream reads and writes one long value through ibLongValue. It
// works on the copy buffer, so an update must be prepared on the cursor
// for its whole use; Save the update to keep what was written.
type ColumnStream struct {
	api      *API
	ses      engine.Session
	tid      engine.TableID
	columnid engine.ColumnID
	itag     int
	offset   int64
}

var _ io.ReadWriteSeeker = (*ColumnStream)(nil)

// NewColumnStream opens a stream over value itag (1-based, 0 means the
// first) of a column.
func (a *API) NewColumnStream(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, itag int) (*ColumnStream, error) {
	if itag < 0 {
		return nil, engine.RangeError("jet.NewColumnStream", "itag", "negative tag %d", itag)
	}
	if itag == 0 {
		itag = 1
	}
	return &ColumnStream{api: a, ses: ses, tid: tid, columnid: columnid, itag: itag}, nil
}

// Length returns the current length of the value.
func (s *ColumnStream) Length() (int64, error) {
	n, _, err := s.api.RetrieveColumn(s.ses, s.tid, s.columnid, nil, 0, engine.RetrieveCopy, &RetrieveInfo{ItagSequence: s.itag})
	return int64(n), err
}

func (s *ColumnStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	info := &RetrieveInfo{LongValueOffset: int(s.offset), ItagSequence: s.itag}
	n, status, err := s.api.RetrieveColumn(s.ses, s.tid, s.columnid, p, len(p), engine.RetrieveCopy, info)
	if err != nil {
		return 0, err
	}
	if status == engine.WrnColumnNull || n == 0 {
		return 0, io.EOF
	}
	if n > len(p) {
		n = len(p)
	}
	s.offset += int64(n)
	return n, nil
}

func (s *ColumnStream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	info := &SetInfo{LongValueOffset: int(s.offset), ItagSequence: s.itag}
	if err := s.api.SetColumn(s.ses, s.tid, s.columnid, p, len(p), engine.SetColumnOverwriteLV, info); err != nil {
		return 0, err
	}
	s.offset += int64(len(p))
	return len(p), nil
}

func (s *ColumnStream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = s.offset
	case io.SeekEnd:
		n, err := s.Length()
		if err != nil {
			return s.offset, err
		}
		base = n
	default:
		return s.offset, errors.New("jet.ColumnStream: invalid whence")
	}
	if base+offset < 0 {
		return s.offset, engine.RangeError("jet.ColumnStream.Seek", "offset", "negative position %d", base+offset)
	}
	s.offset = base + offset
	return s.offset, nil
}

// SetLength grows (with zeros) or truncates the value.
func (s *ColumnStream) SetLength(n int64) error {
	if n < 0 {
		return engine.RangeError("jet.ColumnStream.SetLength", "n", "negative length %d", n)
	}
	if err := s.api.SetColumn(s.ses, s.tid, s.columnid, nil, int(n), engine.SetColumnSizeLV, &SetInfo{ItagSequence: s.itag}); err != nil {
		return err
	}
	if s.offset > n {
		s.offset = n
	}
	return nil
}
