package buffer

// IOBuf is a fixed-capacity byte buffer with a read cursor (begin) and a write cursor (end).
// Data between them is held, data after end is free space. The invariant
// 0 <= begin <= end <= cap is kept by every method.
type IOBuf struct {
	memory     []byte
	begin, end int
}

func New(size int) *IOBuf {
	return &IOBuf{
		memory: make([]byte, size),
	}
}

// Cap returns the capacity of the buffer.
func (b *IOBuf) Cap() int {
	return len(b.memory)
}

// Len returns the number of held bytes.
func (b *IOBuf) Len() int {
	return b.end - b.begin
}

// Peek returns at most n held bytes without consuming them.
func (b *IOBuf) Peek(n int) []byte {
	if n > b.Len() {
		n = b.Len()
	}

	return b.memory[b.begin : b.begin+n]
}

// Preview returns all the held bytes without consuming them.
func (b *IOBuf) Preview() []byte {
	return b.memory[b.begin:b.end]
}

// Drain consumes at most n held bytes and returns them. The returned slice stays valid
// until the next write into the buffer. Cursors are reset once the buffer is exhausted.
func (b *IOBuf) Drain(n int) []byte {
	if n > b.Len() {
		n = b.Len()
	}

	data := b.memory[b.begin : b.begin+n]
	b.begin += n
	if b.begin == b.end {
		b.begin, b.end = 0, 0
	}

	return data
}

// Compact moves held bytes to the beginning of the buffer, maximizing the free space.
func (b *IOBuf) Compact() {
	if b.begin == 0 {
		return
	}

	n := copy(b.memory, b.memory[b.begin:b.end])
	b.begin, b.end = 0, n
}

// Free returns the free space after the held bytes. Bytes written into it are not held
// until committed via Extend.
func (b *IOBuf) Free() []byte {
	return b.memory[b.end:]
}

// Extend marks n bytes of the free space as held.
func (b *IOBuf) Extend(n int) {
	if n > len(b.memory)-b.end {
		n = len(b.memory) - b.end
	}

	b.end += n
}

// Append copies data into the free space if it fits entirely, otherwise returns false
// leaving the buffer intact.
func (b *IOBuf) Append(data []byte) (ok bool) {
	if len(data) > len(b.memory)-b.end {
		return false
	}

	b.end += copy(b.memory[b.end:], data)
	return true
}

// Clear just resets the cursors, so old values may be overridden by new ones.
func (b *IOBuf) Clear() {
	b.begin, b.end = 0, 0
}
