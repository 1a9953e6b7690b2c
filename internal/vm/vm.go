// Package vm wires the class heap, object heap, resolver, and
// interpreter into a runnable machine: it loads a main class, preloads
// any native classes found under a "java" directory, and executes the
// program entry point.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/classheap"
	"github.com/halsted/minijvm/internal/interp"
	"github.com/halsted/minijvm/internal/objectheap"
	"github.com/halsted/minijvm/internal/resolver"
	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/trace"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// Machine owns every piece of VM state for one run: the class and object
// heaps, the lazy resolver, and the interpreter engine.
type Machine struct {
	Classes  *classheap.Heap
	Objects  *objectheap.Heap
	Resolver *resolver.Resolver
	Engine   *interp.Engine
}

// New builds a Machine whose resolver looks for classes under the
// directory component of mainClassPath, printing interpreted output to
// stdout and reading native input from stdin. trace may be nil to
// disable opcode tracing.
func New(mainClassPath string, stdout io.Writer, stdin io.Reader, tr *trace.Writer) *Machine {
	classes := classheap.New()
	objects := objectheap.New()

	prefix := pathPrefix(mainClassPath)

	engine := &interp.Engine{
		Classes: classes,
		Objects: objects,
		Stdout:  stdout,
		Stdin:   bufio.NewReader(stdin),
		Trace:   tr,
	}

	res := resolver.New(classes, prefix, func(class *classfile.ClassFile) error {
		return runClinit(engine, class)
	})
	engine.Resolver = res

	return &Machine{Classes: classes, Objects: objects, Resolver: res, Engine: engine}
}

func pathPrefix(mainClassPath string) string {
	dir := filepath.Dir(mainClassPath)
	if dir == "." {
		return ""
	}
	return dir + string(filepath.Separator)
}

func runClinit(engine *interp.Engine, class *classfile.ClassFile) error {
	method, ok := class.FindMethod("<clinit>", "()V")
	if !ok {
		return nil
	}
	locals := runtime.NewLocals(int(method.Code.MaxLocals))
	ret, err := engine.Execute(class, method, locals)
	if err != nil {
		return err
	}
	if ret.Tag != vmvalue.TagEmpty {
		return vmerr.Invariant("vm.runClinit", fmt.Errorf("%s.<clinit> must return void", class.BinaryName))
	}
	return nil
}

// mainDescriptor is the required signature of the program entry point.
const mainDescriptor = "([Ljava/lang/String;)V"

// Run loads mainClassPath, runs its <clinit>, and executes main.
func (m *Machine) Run(mainClassPath string, args []string) error {
	mainClass, err := loadMain(m.Classes, mainClassPath)
	if err != nil {
		return err
	}
	if err := runClinit(m.Engine, mainClass); err != nil {
		return err
	}

	method, ok := mainClass.FindMethod("main", mainDescriptor)
	if !ok {
		return vmerr.Invariant("vm.Run", fmt.Errorf("%s: no main%s method", mainClass.BinaryName, mainDescriptor))
	}

	size := int(method.Code.MaxLocals)
	if size < 1 {
		size = 1
	}
	locals := runtime.NewLocals(size)
	argsRef, err := m.Objects.CreateArray(len(args))
	if err != nil {
		return vmerr.Invariant("vm.Run", err)
	}
	if err := locals.Set(0, vmvalue.Reference(argsRef)); err != nil {
		return vmerr.Invariant("vm.Run", err)
	}

	ret, err := m.Engine.Execute(mainClass, method, locals)
	if err != nil {
		return err
	}
	if ret.Tag != vmvalue.TagEmpty {
		return vmerr.Invariant("vm.Run", fmt.Errorf("%s.main must return void", mainClass.BinaryName))
	}
	return nil
}

func loadMain(classes *classheap.Heap, path string) (*classfile.ClassFile, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".class")
	if c, ok := classes.Find(name); ok {
		return c, nil
	}
	class, err := resolver.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return classes.Add(name, class)
}

// PreloadNativeClasses walks the "java" directory relative to the
// working directory and pre-parses every .class file found, using the
// same resolver file-acquisition path as lazy loading. Left intentionally
// simple, matching the spec's explicit scoping-out of the directory
// walker's detailed design.
func PreloadNativeClasses(classes *classheap.Heap) error {
	const root = "java"
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return nil // root directory absent: nothing to preload
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		binaryName := strings.TrimSuffix(rel, ".class")
		return resolver.Preload(classes, path, binaryName)
	})
	if err != nil {
		return vmerr.Resolution("vm.PreloadNativeClasses", err)
	}
	return nil
}
