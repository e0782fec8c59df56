package cursor

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
)

// Values walks the values of a multi-valued column of the current record,
// from value 1 until the first null.
type Values struct {
	api      *jet.API
	ses      engine.Session
	tid      engine.TableID
	columnid engine.ColumnID
	grbit    engine.RetrieveColumnGrbit
	itag     int
	value    []byte
	done     bool
	err      error
}

// NewValues enumerates columnid. grbit is passed to every retrieve, e.g.
// engine.RetrieveCopy to read a prepared update.
func NewValues(api *jet.API, ses engine.Session, tid engine.TableID, columnid engine.ColumnID, grbit engine.RetrieveColumnGrbit) *Values {
	return &Values{api: api, ses: ses, tid: tid, columnid: columnid, grbit: grbit}
}

func (v *Values) Next() bool {
	if v.done {
		return false
	}
	v.itag++
	b, err := v.api.RetrieveColumnBytes(v.ses, v.tid, v.columnid, v.grbit, &jet.RetrieveInfo{ItagSequence: v.itag})
	if err != nil || b == nil {
		v.err = err
		v.done = true
		v.value = nil
		return false
	}
	v.value = b
	return true
}

// Value returns the current value. It is owned by the caller.
func (v *Values) Value() []byte { return v.value }

// ItagSequence returns the 1-based number of the current value.
func (v *Values) ItagSequence() int { return v.itag }

func (v *Values) Err() error { return v.err }

func (v *Values) Close() error {
	v.done = true
	return nil
}
