package native

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// hostOrder is the byte order of every structure image.
var hostOrder = binary.NativeEndian

// --------------------------------------------------------------------------
// Layout
// --------------------------------------------------------------------------

// Layout fixes the ABI parameters structure images are computed for.
// Fields are naturally aligned and a structure's size is rounded up to its
// widest member.
type Layout struct {
	PointerSize int // 4 or 8
}

// Host is the layout of the running process.
var Host = Layout{PointerSize: int(unsafe.Sizeof(uintptr(0)))}

// Validate reports an unsupported pointer size.
func (l Layout) Validate() error {
	if l.PointerSize != 4 && l.PointerSize != 8 {
		return engine.RangeError("native.Layout", "PointerSize", "unsupported pointer size %d", l.PointerSize)
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("%d-bit", l.PointerSize*8)
}

// Catalog returns the structure shapes for this layout. It panics on a
// layout that does not Validate.
func (l Layout) Catalog() *Catalog {
	switch l.PointerSize {
	case 4:
		return catalog32
	case 8:
		return catalog64
	default:
		panic(fmt.Sprintf("native: unsupported pointer size %d", l.PointerSize))
	}
}

// --------------------------------------------------------------------------
// Shapes
// --------------------------------------------------------------------------

// FieldKind is the storage class of a structure member.
type FieldKind uint8

const (
	U16  FieldKind = iota // 16-bit unsigned
	U32                   // 32-bit unsigned
	I32                   // 32-bit signed (error codes)
	Word                  // pointer-sized integer (handles, unions with pointers)
	Ptr                   // reference to other memory; always zero in the image
)

func (k FieldKind) size(ptr int) int {
	switch k {
	case U16:
		return 2
	case U32, I32:
		return 4
	default:
		return ptr
	}
}

func (k FieldKind) String() string {
	switch k {
	case U16:
		return "u16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case Word:
		return "word"
	default:
		return "ptr"
	}
}

// Field is one member of a Shape.
type Field struct {
	Name   string
	Kind   FieldKind
	Offset int
	Size   int
}

type fieldDecl struct {
	name string
	kind FieldKind
}

// Shape is the computed layout of one native structure variant.
type Shape struct {
	Name   string
	Size   int
	Align  int
	fields []Field
	byName map[string]int
}

func newShape(name string, ptr int, decls ...fieldDecl) *Shape {
	s := &Shape{Name: name, Align: 1, byName: make(map[string]int, len(decls))}
	off := 0
	for _, d := range decls {
		size := d.kind.size(ptr)
		off = alignUp(off, size)
		s.byName[d.name] = len(s.fields)
		s.fields = append(s.fields, Field{Name: d.name, Kind: d.kind, Offset: off, Size: size})
		off += size
		if size > s.Align {
			s.Align = size
		}
	}
	s.Size = alignUp(off, s.Align)
	return s
}

func alignUp(off, align int) int {
	return (off + align - 1) / align * align
}

// Fields returns the members in declaration order.
func (s *Shape) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Offset returns the byte offset of a member. Unknown names panic: shapes
// are fixed at compile time, so a bad name is a programming error.
func (s *Shape) Offset(name string) int {
	i, ok := s.byName[name]
	if !ok {
		panic(fmt.Sprintf("native: %s has no field %q", s.Name, name))
	}
	return s.fields[i].Offset
}

// Has reports whether the shape declares the member.
func (s *Shape) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// At returns an accessor for element i of an array of this shape in b.
func (s *Shape) At(b *engine.Block, i int) Rec {
	return Rec{Block: b, Base: i * s.Size, Shape: s}
}

// Fits reports whether b holds count elements of this shape.
func (s *Shape) Fits(b *engine.Block, count int) bool {
	return b != nil && count >= 0 && b.Len() >= count*s.Size
}

// --------------------------------------------------------------------------
// Record accessor
// --------------------------------------------------------------------------

// Rec reads and writes the members of one structure inside a Block.
type Rec struct {
	Block *engine.Block
	Base  int
	Shape *Shape
}

func (r Rec) at(name string) (int, Field) {
	f := r.Shape.fields[r.index(name)]
	return r.Base + f.Offset, f
}

func (r Rec) index(name string) int {
	i, ok := r.Shape.byName[name]
	if !ok {
		panic(fmt.Sprintf("native: %s has no field %q", r.Shape.Name, name))
	}
	return i
}

func (r Rec) U16(name string) uint16 {
	off, _ := r.at(name)
	return hostOrder.Uint16(r.Block.Bytes[off:])
}

func (r Rec) SetU16(name string, v uint16) {
	off, _ := r.at(name)
	hostOrder.PutUint16(r.Block.Bytes[off:], v)
}

func (r Rec) U32(name string) uint32 {
	off, _ := r.at(name)
	return hostOrder.Uint32(r.Block.Bytes[off:])
}

func (r Rec) SetU32(name string, v uint32) {
	off, _ := r.at(name)
	hostOrder.PutUint32(r.Block.Bytes[off:], v)
}

func (r Rec) I32(name string) int32 { return int32(r.U32(name)) }

func (r Rec) SetI32(name string, v int32) { r.SetU32(name, uint32(v)) }

// Word reads a pointer-sized integer member.
func (r Rec) Word(name string) uint64 {
	off, f := r.at(name)
	if f.Size == 4 {
		return uint64(hostOrder.Uint32(r.Block.Bytes[off:]))
	}
	return hostOrder.Uint64(r.Block.Bytes[off:])
}

// SetWord writes a pointer-sized integer member, truncating to 32 bits on
// a 4-byte layout.
func (r Rec) SetWord(name string, v uint64) {
	off, f := r.at(name)
	if f.Size == 4 {
		hostOrder.PutUint32(r.Block.Bytes[off:], uint32(v))
		return
	}
	hostOrder.PutUint64(r.Block.Bytes[off:], v)
}

// Ref returns the memory a reference member points at, or nil.
func (r Rec) Ref(name string) *engine.Block {
	off, _ := r.at(name)
	return r.Block.Ref(off)
}

// SetRef attaches memory to a reference member.
func (r Rec) SetRef(name string, ref *engine.Block) {
	off, _ := r.at(name)
	r.Block.SetRef(off, ref)
}
