package interp

import (
	"bytes"
	"testing"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/objectheap"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// buildFieldTestClass emits a minimal class "Obj" with a single instance
// field "n":"I" and a FieldRef constant (#6) pointing at it, enough to
// exercise getfield/putfield without a resolver or any methods.
func buildFieldTestClass(t *testing.T) *classfile.ClassFile {
	t.Helper()
	var buf bytes.Buffer
	u2 := func(v int) { buf.WriteByte(byte(v >> 8)); buf.WriteByte(byte(v)) }
	u4 := func(v int) {
		buf.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	}
	utf8 := func(s string) {
		buf.WriteByte(1) // TagUtf8
		u2(len(s))
		buf.WriteString(s)
	}

	u4(0xCAFEBABE)
	u2(0)  // minor
	u2(52) // major

	u2(7) // constant_pool_count
	utf8("Obj")       // 1
	buf.WriteByte(7)  // TagClass
	u2(1)             // 2: class -> name 1
	utf8("n")         // 3
	utf8("I")         // 4
	buf.WriteByte(12) // TagNameAndType
	u2(3)
	u2(4) // 5: NameAndType(n, I)
	buf.WriteByte(9)  // TagFieldRef
	u2(2)
	u2(5) // 6: FieldRef(Obj, n:I)

	u2(0x0021) // access flags
	u2(2)      // this_class
	u2(0)      // super_class
	u2(0)      // interfaces_count

	u2(1)      // fields_count
	u2(0)      // access flags
	u2(3)      // name "n"
	u2(4)      // descriptor "I"
	u2(0)      // attributes_count

	u2(0) // methods_count
	u2(0) // class attributes_count

	class, err := classfile.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return class
}

func TestFieldIsolationBetweenTwoObjects(t *testing.T) {
	class := buildFieldTestClass(t)
	objects := objectheap.New()
	e := &Engine{Objects: objects}

	refA, err := objects.CreateObject(class)
	if err != nil {
		t.Fatalf("CreateObject A: %v", err)
	}
	refB, err := objects.CreateObject(class)
	if err != nil {
		t.Fatalf("CreateObject B: %v", err)
	}

	f := newTestFrame(nil)
	f.Class = class

	// putfield expects ..., objectref, value with value on top.
	if err := f.Stack.Push(vmvalue.Reference(refA)); err != nil {
		t.Fatal(err)
	}
	if err := f.Stack.PushInt(10); err != nil {
		t.Fatal(err)
	}
	if err := e.putfield(f, 6); err != nil {
		t.Fatalf("putfield A: %v", err)
	}

	// B.n = 20
	if err := f.Stack.Push(vmvalue.Reference(refB)); err != nil {
		t.Fatal(err)
	}
	if err := f.Stack.PushInt(20); err != nil {
		t.Fatal(err)
	}
	if err := e.putfield(f, 6); err != nil {
		t.Fatalf("putfield B: %v", err)
	}

	if err := f.Stack.Push(vmvalue.Reference(refA)); err != nil {
		t.Fatal(err)
	}
	if err := e.getfield(f, 6); err != nil {
		t.Fatalf("getfield A: %v", err)
	}
	got, err := f.Stack.PopInt32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 10 {
		t.Errorf("A.n = %d, want 10 (must not be clobbered by B's write)", got)
	}

	if err := f.Stack.Push(vmvalue.Reference(refB)); err != nil {
		t.Fatal(err)
	}
	if err := e.getfield(f, 6); err != nil {
		t.Fatalf("getfield B: %v", err)
	}
	got, err = f.Stack.PopInt32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 20 {
		t.Errorf("B.n = %d, want 20", got)
	}
}

func TestCheckFieldDescriptorRejectsFloat(t *testing.T) {
	for _, desc := range []string{"D", "F"} {
		if err := checkFieldDescriptor(desc); err == nil {
			t.Errorf("checkFieldDescriptor(%q): expected error, got nil", desc)
		}
	}
	if err := checkFieldDescriptor("J"); err != nil {
		t.Errorf("checkFieldDescriptor(\"J\"): unexpected error %v", err)
	}
}
