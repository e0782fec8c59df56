package jet

import (
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"time"
)

// --------------------------------------------------------------------------
// Typed setters
// --------------------------------------------------------------------------

// SetColumnValue encodes v and stages it. Empty text and binary values are
// stored as zero-length values, not as null.
func (a *API) SetColumnValue(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v codec.Value, grbit engine.SetColumnGrbit) error {
	b, err := codec.Encode(v)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		grbit |= engine.SetColumnZeroLength
	}
	return a.SetColumn(ses, tid, columnid, b, len(b), grbit, nil)
}

// SetColumnNull sets a column to null.
func (a *API) SetColumnNull(ses engine.Session, tid engine.TableID, columnid engine.ColumnID) error {
	return a.SetColumn(ses, tid, columnid, nil, 0, engine.SetColumnNone, nil)
}

func (a *API) SetColumnBool(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v bool) error {
	return a.SetColumnValue(ses, tid, columnid, codec.BoolValue(v), engine.SetColumnNone)
}

func (a *API) SetColumnByte(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v byte) error {
	return a.SetColumnValue(ses, tid, columnid, codec.UInt8Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnInt16(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v int16) error {
	return a.SetColumnValue(ses, tid, columnid, codec.Int16Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnUInt16(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v uint16) error {
	return a.SetColumnValue(ses, tid, columnid, codec.UInt16Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnInt32(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v int32) error {
	return a.SetColumnValue(ses, tid, columnid, codec.Int32Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnUInt32(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v uint32) error {
	return a.SetColumnValue(ses, tid, columnid, codec.UInt32Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnInt64(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v int64) error {
	return a.SetColumnValue(ses, tid, columnid, codec.Int64Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnUInt64(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v uint64) error {
	return a.SetColumnValue(ses, tid, columnid, codec.UInt64Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnFloat32(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v float32) error {
	return a.SetColumnValue(ses, tid, columnid, codec.Float32Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnFloat64(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v float64) error {
	return a.SetColumnValue(ses, tid, columnid, codec.Float64Value(v), engine.SetColumnNone)
}

func (a *API) SetColumnDateTime(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, v time.Time) error {
	return a.SetColumnValue(ses, tid, columnid, codec.DateTimeValue(v), engine.SetColumnNone)
}

// SetColumnString stores s in the given code page.
func (a *API) SetColumnString(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, s string, cp engine.CP) error {
	b, err := codec.EncodeText(s, cp)
	if err != nil {
		return err
	}
	grbit := engine.SetColumnNone
	if len(b) == 0 {
		grbit = engine.SetColumnZeroLength
	}
	return a.SetColumn(ses, tid, columnid, b, len(b), grbit, nil)
}

// SetColumnBytes stores b. A nil b sets the column to null; an empty one
// stores a zero-length value.
func (a *API) SetColumnBytes(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, b []byte) error {
	grbit := engine.SetColumnNone
	if b != nil && len(b) == 0 {
		grbit = engine.SetColumnZeroLength
	}
	return a.SetColumn(ses, tid, columnid, b, len(b), grbit, nil)
}

// --------------------------------------------------------------------------
// Typed getters
// --------------------------------------------------------------------------

// retrieveProbe is the first buffer size tried; longer values cost a
// second call.
const retrieveProbe = 256

// RetrieveColumnBytes returns a copy of a column value, nil when the column
// is null.
func (a *API) RetrieveColumnBytes(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit, info *RetrieveInfo) ([]byte, error) {
	buf := make([]byte, retrieveProbe)
	n, status, err := a.RetrieveColumn(ses, tid, columnid, buf, len(buf), grbit, info)
	if err != nil {
		return nil, err
	}
	switch status {
	case engine.WrnColumnNull:
		return nil, nil
	case engine.WrnBufferTruncated:
		buf = make([]byte, n)
		if n, status, err = a.RetrieveColumn(ses, tid, columnid, buf, len(buf), grbit, info); err != nil {
			return nil, err
		}
		if status == engine.WrnColumnNull {
			return nil, nil
		}
	}
	return buf[:n], nil
}

// RetrieveColumnValue decodes a column as kind k. ok is false when the
// column is null.
func (a *API) RetrieveColumnValue(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, k codec.Kind, grbit engine.RetrieveColumnGrbit) (v codec.Value, ok bool, err error) {
	b, err := a.RetrieveColumnBytes(ses, tid, columnid, grbit, nil)
	if err != nil || b == nil {
		return codec.Value{}, false, err
	}
	v, err = codec.Decode(b, k)
	if err != nil {
		return codec.Value{}, false, err
	}
	return v, true, nil
}

func (a *API) RetrieveColumnAsBool(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (bool, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.Bool, grbit)
	return v.Bool(), ok, err
}

func (a *API) RetrieveColumnAsByte(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (byte, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.UInt8, grbit)
	return v.UInt8(), ok, err
}

func (a *API) RetrieveColumnAsInt16(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (int16, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.Int16, grbit)
	return v.Int16(), ok, err
}

func (a *API) RetrieveColumnAsUInt16(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (uint16, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.UInt16, grbit)
	return v.UInt16(), ok, err
}

func (a *API) RetrieveColumnAsInt32(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (int32, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.Int32, grbit)
	return v.Int32(), ok, err
}

func (a *API) RetrieveColumnAsUInt32(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (uint32, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.UInt32, grbit)
	return v.UInt32(), ok, err
}

func (a *API) RetrieveColumnAsInt64(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (int64, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.Int64, grbit)
	return v.Int64(), ok, err
}

func (a *API) RetrieveColumnAsUInt64(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (uint64, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.UInt64, grbit)
	return v.UInt64(), ok, err
}

func (a *API) RetrieveColumnAsFloat32(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (float32, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.Float32, grbit)
	return v.Float32(), ok, err
}

func (a *API) RetrieveColumnAsFloat64(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (float64, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.Float64, grbit)
	return v.Float64(), ok, err
}

func (a *API) RetrieveColumnAsDateTime(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) (time.Time, bool, error) {
	v, ok, err := a.RetrieveColumnValue(ses, tid, columnid, codec.DateTime, grbit)
	return v.DateTime(), ok, err
}

// RetrieveColumnAsString decodes a text column stored in code page cp.
func (a *API) RetrieveColumnAsString(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, cp engine.CP, grbit engine.RetrieveColumnGrbit) (string, bool, error) {
	b, err := a.RetrieveColumnBytes(ses, tid, columnid, grbit, nil)
	if err != nil || b == nil {
		return "", false, err
	}
	s, err := codec.DecodeText(b, cp)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// --------------------------------------------------------------------------
// Keys
// --------------------------------------------------------------------------

// MakeKeyValue encodes v as the next key column. Empty text and binary
// values become zero-length key columns.
func (a *API) MakeKeyValue(ses engine.Session, tid engine.TableID, v codec.Value, grbit engine.MakeKeyGrbit) error {
	b, err := codec.Encode(v)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		grbit |= engine.MakeKeyKeyDataZeroLength
	}
	return a.MakeKey(ses, tid, b, len(b), grbit)
}

// MakeKeyString encodes s in code page cp as the next key column.
func (a *API) MakeKeyString(ses engine.Session, tid engine.TableID, s string, cp engine.CP, grbit engine.MakeKeyGrbit) error {
	b, err := codec.EncodeText(s, cp)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		grbit |= engine.MakeKeyKeyDataZeroLength
	}
	return a.MakeKey(ses, tid, b, len(b), grbit)
}

// --------------------------------------------------------------------------
// Try variants
// --------------------------------------------------------------------------

// TryMove moves the cursor and reports false instead of failing when there
// is no record to move to.
func (a *API) TryMove(ses engine.Session, tid engine.TableID, offset int32, grbit engine.MoveGrbit) (bool, error) {
	err := a.Move(ses, tid, offset, grbit)
	if engine.IsStatus(err, engine.ErrNoCurrentRecord) {
		return false, nil
	}
	return err == nil, err
}

func (a *API) TryMoveFirst(ses engine.Session, tid engine.TableID) (bool, error) {
	return a.TryMove(ses, tid, engine.MoveFirst, engine.MoveNone)
}

func (a *API) TryMoveNext(ses engine.Session, tid engine.TableID) (bool, error) {
	return a.TryMove(ses, tid, engine.MoveNext, engine.MoveNone)
}

func (a *API) TryMovePrevious(ses engine.Session, tid engine.TableID) (bool, error) {
	return a.TryMove(ses, tid, engine.MovePrevious, engine.MoveNone)
}

func (a *API) TryMoveLast(ses engine.Session, tid engine.TableID) (bool, error) {
	return a.TryMove(ses, tid, engine.MoveLast, engine.MoveNone)
}

// TrySeek seeks and reports false instead of failing when no entry
// matches.
func (a *API) TrySeek(ses engine.Session, tid engine.TableID, grbit engine.SeekGrbit) (bool, error) {
	_, err := a.Seek(ses, tid, grbit)
	if engine.IsStatus(err, engine.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
