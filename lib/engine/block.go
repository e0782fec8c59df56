package engine

// Block is the image of a native structure, or of a contiguous array of them,
// as it crosses the call surface. Reference fields inside Bytes are never
// filled with addresses; the memory a reference field points at travels in
// Refs, keyed by the byte offset of that field. A missing entry is a null
// reference.
type Block struct {
	Bytes []byte
	Refs  map[int]*Block
}

// NewBlock allocates a zeroed block of the given size.
func NewBlock(size int) *Block {
	return &Block{Bytes: make([]byte, size)}
}

// BytesBlock wraps a plain buffer (a string or a value) as a block.
func BytesBlock(b []byte) *Block {
	if b == nil {
		return nil
	}
	return &Block{Bytes: b}
}

// Ref returns the block referenced by the field at offset, or nil.
func (b *Block) Ref(offset int) *Block {
	if b == nil || b.Refs == nil {
		return nil
	}
	return b.Refs[offset]
}

// SetRef attaches ref to the reference field at offset. A nil ref clears it.
func (b *Block) SetRef(offset int, ref *Block) {
	if ref == nil {
		delete(b.Refs, offset)
		return
	}
	if b.Refs == nil {
		b.Refs = make(map[int]*Block)
	}
	b.Refs[offset] = ref
}

// Len returns the size of the image in bytes.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Bytes)
}
