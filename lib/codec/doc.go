// Package codec converts typed Go values to and from the byte encodings an
// ISAM engine stores in its columns.
//
// The package focuses on:
//   - Fixed-width numbers in the host's byte order (the engine runs in-process,
//     so there is no network byte order)
//   - Dates as OLE Automation dates (float64 days since 1899-12-30)
//   - Text as 2-byte characters, or single-byte Windows-1252 for ASCII columns
//
// Key Components:
//
//   - Kind: The closed set of column value kinds. Kind.Coltyp names the engine
//     column type a kind is stored in. Int64 and UInt64 share the signed 64-bit
//     Currency type; unsigned values round-trip by reinterpreting the same 8
//     bytes, not by range checks.
//
//   - Value: A tagged union holding one value of a Kind. Use the constructors
//     (Int32, Text, DateTime, ...) and the matching accessors.
//
//   - Encode / Decode: Total over their domain. Decode requires the exact
//     width for fixed kinds and fails with engine.ErrRange otherwise.
//
//   - EncodeTo: Encodes into a caller buffer whose declared length must match
//     the encoding exactly. A nil buffer is only accepted with a declared length
//     of zero, which is the "set to null" request and never reaches Encode.
//
// All errors are *engine.ParamError values of kind engine.ErrRange.
package codec
