// Package resolver implements lazy class loading: given a binary class
// name, it returns the loaded class file, loading and memory-mapping the
// backing .class file on miss, and running the class's <clinit> exactly
// once before the faulting instruction retires.
package resolver

import (
	"bytes"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/classheap"
	"github.com/halsted/minijvm/internal/vmerr"
)

// ClinitRunner executes a class's <clinit>, if present, with an empty
// locals array. It is supplied by internal/vm to avoid an import cycle
// between the resolver and the interpreter.
type ClinitRunner func(class *classfile.ClassFile) error

// Resolver loads classes by binary name under a configured path prefix,
// deduplicating through a classheap.Heap.
type Resolver struct {
	heap   *classheap.Heap
	prefix string
	clinit ClinitRunner

	// ranClinit tracks classes whose <clinit> has already executed, since
	// a class heap hit (already loaded) must not re-run it.
	ranClinit map[string]bool
}

// New builds a resolver rooted at prefix (the directory component of the
// initially loaded main class's path, or "" if none) backed by heap.
// clinit is invoked once per class immediately after it is first loaded.
func New(heap *classheap.Heap, prefix string, clinit ClinitRunner) *Resolver {
	return &Resolver{
		heap:      heap,
		prefix:    prefix,
		clinit:    clinit,
		ranClinit: make(map[string]bool),
	}
}

// Resolve returns the loaded class for name, loading it on miss by
// concatenating the configured prefix and a ".class" suffix. A failure to
// open the backing file is a fatal resolution error.
func (r *Resolver) Resolve(name string) (*classfile.ClassFile, error) {
	if c, ok := r.heap.Find(name); ok {
		return c, nil
	}
	if c, ok := r.heap.Find(r.prefix + name); ok {
		return c, nil
	}

	path := r.prefix + name + ".class"
	class, err := loadFile(path)
	if err != nil {
		return nil, vmerr.Resolution("resolver.Resolve", fmt.Errorf("open %s: %w", path, err))
	}

	registered, err := r.heap.Add(path, class)
	if err != nil {
		return nil, vmerr.Resolution("resolver.Resolve", err)
	}

	if !r.ranClinit[registered.BinaryName] {
		r.ranClinit[registered.BinaryName] = true
		if err := r.clinit(registered); err != nil {
			return nil, err
		}
	}

	return registered, nil
}

// LoadFile memory-maps path and decodes a class file from it, without
// registering it in any heap. Used to load the initially specified main
// class file, whose registration under its own binary name happens at
// the call site once the class's own name is known.
func LoadFile(path string) (*classfile.ClassFile, error) {
	return loadFile(path)
}

// loadFile memory-maps path and decodes a class file from the mapped
// region, unmapping and closing the file once decoding returns.
func loadFile(path string) (*classfile.ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer data.Unmap()

	class, err := classfile.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return class, nil
}

// Preload loads and registers a class file directly from an on-disk path
// without running <clinit>, used by the native-class preload walk (see
// internal/vm.PreloadNativeClasses), which only needs classes present in
// the heap ahead of time, not initialized.
func Preload(heap *classheap.Heap, path, binaryName string) error {
	class, err := loadFile(path)
	if err != nil {
		return vmerr.Resolution("resolver.Preload", fmt.Errorf("open %s: %w", path, err))
	}
	if _, err := heap.Add(binaryName, class); err != nil {
		return vmerr.Resolution("resolver.Preload", err)
	}
	return nil
}
