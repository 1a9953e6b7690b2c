// Package objectheap is the append-only registry of every dynamically
// allocated value: instances, one- and two-dimensional integer arrays,
// and synthesized strings. It owns the backing memory for bulk release at
// shutdown; nothing is freed incrementally.
package objectheap

import (
	"fmt"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// maxObjects bounds the heap, mirroring the source's fixed-capacity
// object table.
const maxObjects = 5000

// Kind discriminates what an Entry's backing storage means, matching the
// "tag of the object's first cell" discrimination the source uses when
// releasing objects.
type Kind int

const (
	KindInstance Kind = iota
	KindArray
	KindTwoDArray
	KindString
)

// Entry is one object-heap allocation.
type Entry struct {
	Kind Kind

	Class *classfile.ClassFile // KindInstance: owning class, for field layout
	Cells []vmvalue.Cell       // KindInstance: one cell per field, positional

	Array []int32 // KindArray: the raw backing buffer

	Rows [][]int32 // KindTwoDArray: row-pointer vector
	Cols int       // KindTwoDArray: column count per row

	Bytes []byte // KindString: NUL-terminated backing buffer
}

// Heap is the process-wide object registry. Not safe for concurrent use.
type Heap struct {
	entries []*Entry
}

func New() *Heap {
	return &Heap{}
}

func (h *Heap) alloc(e *Entry) (int32, error) {
	if len(h.entries) >= maxObjects {
		return 0, fmt.Errorf("object heap: capacity %d exceeded", maxObjects)
	}
	idx := int32(len(h.entries))
	h.entries = append(h.entries, e)
	return idx, nil
}

// CreateObject allocates len(class.Fields) cells tagged empty and returns
// a reference to the new instance.
func (h *Heap) CreateObject(class *classfile.ClassFile) (int32, error) {
	cells := make([]vmvalue.Cell, len(class.Fields))
	for i := range cells {
		cells[i] = vmvalue.Empty
	}
	return h.alloc(&Entry{Kind: KindInstance, Class: class, Cells: cells})
}

// CreateArray allocates an n-int buffer and returns a reference to it.
func (h *Heap) CreateArray(n int) (int32, error) {
	if n < 0 {
		return 0, fmt.Errorf("object heap: negative array length %d", n)
	}
	return h.alloc(&Entry{Kind: KindArray, Array: make([]int32, n)})
}

// CreateTwoDimensionArray allocates a row-pointer vector of length r, each
// row a c-int buffer.
func (h *Heap) CreateTwoDimensionArray(r, c int) (int32, error) {
	if r < 0 || c < 0 {
		return 0, fmt.Errorf("object heap: negative array dimension (%d,%d)", r, c)
	}
	rows := make([][]int32, r)
	for i := range rows {
		rows[i] = make([]int32, c)
	}
	return h.alloc(&Entry{Kind: KindTwoDArray, Rows: rows, Cols: c})
}

// CreateString copies src into a fresh NUL-terminated buffer and returns a
// reference to it.
func (h *Heap) CreateString(src string) (int32, error) {
	buf := make([]byte, len(src)+1)
	copy(buf, src)
	return h.alloc(&Entry{Kind: KindString, Bytes: buf})
}

// Get returns the entry for ref, or an error if ref is out of range.
func (h *Heap) Get(ref int32) (*Entry, error) {
	if ref < 0 || int(ref) >= len(h.entries) {
		return nil, fmt.Errorf("object heap: reference %d out of range [0,%d)", ref, len(h.entries))
	}
	return h.entries[ref], nil
}

// StringValue returns the Go string view of a KindString entry, stopping
// at the NUL terminator.
func (e *Entry) StringValue() string {
	for i, b := range e.Bytes {
		if b == 0 {
			return string(e.Bytes[:i])
		}
	}
	return string(e.Bytes)
}

// Free releases every entry. As with the class heap, this drops
// references for the garbage collector; the single bulk-release call
// site is preserved from the source's shutdown-time free pass.
func (h *Heap) Free() {
	h.entries = nil
}
