// Package cursor turns move and retrieve calls into forward-only
// sequences. Each iterator follows the bufio.Scanner pattern:
//
//	it := cursor.NewRecords(api, ses, tid)
//	defer it.Close()
//	for it.Next() {
//		...
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
//
// A sequence ends when the engine reports that there is nothing more
// (no current record, a null value); that is not an error. Iterators can
// not be restarted.
package cursor
