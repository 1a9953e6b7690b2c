// Package classheap is the append-only registry of parsed class files,
// deduplicated by binary name. It owns all class data for the process
// lifetime and releases it in bulk at shutdown.
package classheap

import (
	"fmt"
	"strings"

	"github.com/halsted/minijvm/internal/classfile"
)

// maxClasses bounds the heap to a pragmatic small upper bound, mirroring
// the source's fixed-capacity class table.
const maxClasses = 5000

// Heap is the process-wide class registry. It is not safe for concurrent
// use; the VM is single-threaded by design (see the concurrency model).
type Heap struct {
	byName map[string]*classfile.ClassFile
	order  []string
}

func New() *Heap {
	return &Heap{byName: make(map[string]*classfile.ClassFile)}
}

// Add inserts class under name, stripping any trailing ".class" suffix.
// Re-adding an already-present name is a no-op that returns the existing
// entry, matching the resolver's "the class heap never re-parses a class
// already present" invariant.
func (h *Heap) Add(name string, class *classfile.ClassFile) (*classfile.ClassFile, error) {
	name = strings.TrimSuffix(name, ".class")
	if existing, ok := h.byName[name]; ok {
		return existing, nil
	}
	if len(h.order) >= maxClasses {
		return nil, fmt.Errorf("class heap: capacity %d exceeded", maxClasses)
	}
	h.byName[name] = class
	h.order = append(h.order, name)
	return class, nil
}

// Find looks up a previously loaded class by binary name.
func (h *Heap) Find(name string) (*classfile.ClassFile, bool) {
	name = strings.TrimSuffix(name, ".class")
	c, ok := h.byName[name]
	return c, ok
}

// Len reports how many classes are currently loaded.
func (h *Heap) Len() int {
	return len(h.order)
}

// All returns loaded classes in load order, for disassembly/reporting.
func (h *Heap) All() []*classfile.ClassFile {
	out := make([]*classfile.ClassFile, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.byName[name])
	}
	return out
}

// Free releases every entry. In Go this drops references for the garbage
// collector rather than manually deallocating, but the single
// bulk-release call site is preserved since object-lifetime auditing
// depends on having exactly one place where classes go away.
func (h *Heap) Free() {
	h.byName = make(map[string]*classfile.ClassFile)
	h.order = nil
}
