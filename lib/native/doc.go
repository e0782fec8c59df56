// Package native converts descriptor values into the exact binary images of
// the structures an ISAM engine's call surface accepts, and converts result
// images back.
//
// The package focuses on:
//   - Byte-exact layouts for both 32-bit and 64-bit pointer widths
//   - A size field at the start of every image, computed from the layout and
//     never hard-coded
//   - Choosing between structure versions from the data a descriptor carries
//
// Key Components:
//
//   - Layout: The ABI parameters (pointer size). Host is the running
//     process. Each Layout has a Catalog of Shapes, one per structure variant.
//     Members are naturally aligned and sizes are rounded up to the widest
//     member, which is what a C compiler does for these structures.
//
//   - Shape / Rec: A Shape knows member offsets; a Rec reads and writes the
//     members of one image inside an engine.Block. Reference members are
//     always zero in the bytes; the memory they point at travels in the
//     block's Refs.
//
//   - Converters: <Struct>ToNative validates the descriptor and produces the
//     image with numeric and flag members filled in and string or blob
//     references left empty. <Struct>FromNative checks the size field and
//     returns a *VersionError (matching engine.ErrUnsupportedVersion) for sizes
//     it does not know.
//
//   - Bind: The call boundary attaches names, key descriptions and column data
//     with Bind* right before the engine call. Names are null-terminated
//     2-byte strings.
//
// Index creation comes in two versions. The extended JET_INDEXCREATE adds a
// per-column key-size limit and a conditional column list. It is produced if
// and only if IndexCreate.VarSegMac or IndexCreate.ConditionalColumns is
// populated, and the converter then sets the variant's option bit itself; a
// caller cannot set that bit. Arrays of index descriptors are laid out back
// to back, each image as long as its own size field says.
//
// Thread-safety: Layouts and Catalogs are immutable. Blocks are not
// synchronized.
package native
