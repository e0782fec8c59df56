package native

import (
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// The converters above leave every string and blob reference empty. The
// Bind functions attach that memory immediately before the engine call, so
// the memory lives exactly as long as the call that reads it.

// BindIndexCreates attaches index names, key descriptions and conditional
// column names to images built by IndexCreatesToNative from the same ics.
// Key descriptions are padded with nulls up to KeyLength characters, which
// yields the double-null terminated form.
func (l Layout) BindIndexCreates(blk *engine.Block, ics []IndexCreate) error {
	recs, err := l.indexCreateRecs("native.BindIndexCreates", blk, len(ics))
	if err != nil {
		return err
	}
	cs := l.Catalog().ConditionalColumn
	for i, ic := range ics {
		r := recs[i]
		name, err := codec.NullTerminated(ic.Name)
		if err != nil {
			return err
		}
		r.SetRef(fIndexName, engine.BytesBlock(name))

		key, err := codec.EncodeUnicode(ic.Key)
		if err != nil {
			return err
		}
		n := ic.effectiveKeyLength() * 2
		padded := make([]byte, n)
		copy(padded, key)
		r.SetRef(fKey, engine.BytesBlock(padded))

		if len(ic.ConditionalColumns) == 0 || !r.Shape.Has(fConditionalColumns) {
			continue
		}
		child := r.Ref(fConditionalColumns)
		if !cs.Fits(child, len(ic.ConditionalColumns)) {
			return engine.RangeError("native.BindIndexCreates", "ConditionalColumns", "image does not match descriptor %d", i)
		}
		for j, cc := range ic.ConditionalColumns {
			ccName, err := codec.NullTerminated(cc.Name)
			if err != nil {
				return err
			}
			cs.At(child, j).SetRef(fColumnName, engine.BytesBlock(ccName))
		}
	}
	return nil
}

// BindSetColumns attaches the data of each request to images built by
// SetColumnsToNative from the same scs. A nil Data stays a null reference;
// an empty one becomes a zero-length buffer.
func (l Layout) BindSetColumns(blk *engine.Block, scs []SetColumn) error {
	s := l.Catalog().SetColumn
	if !s.Fits(blk, len(scs)) {
		return engine.RangeError("native.BindSetColumns", "scs", "image holds fewer than %d entries", len(scs))
	}
	for i, sc := range scs {
		s.At(blk, i).SetRef(fData, engine.BytesBlock(sc.payload()))
	}
	return nil
}

// ReadBackSetColumns copies the per-entry results of an engine call into
// scs.
func (l Layout) ReadBackSetColumns(blk *engine.Block, scs []SetColumn) error {
	out, err := l.SetColumnsFromNative(blk, len(scs))
	if err != nil {
		return err
	}
	for i := range scs {
		scs[i].Err = out[i].Err
	}
	return nil
}

// ReadBackIndexCreates copies the per-index results of an engine call into
// ics.
func (l Layout) ReadBackIndexCreates(blk *engine.Block, ics []IndexCreate) error {
	recs, err := l.indexCreateRecs("native.ReadBackIndexCreates", blk, len(ics))
	if err != nil {
		return err
	}
	for i, r := range recs {
		ics[i].Err = engine.Status(r.I32(fErr))
	}
	return nil
}
