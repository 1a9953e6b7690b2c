package classfile

import (
	"bytes"
	"testing"
)

// classBuilder assembles a minimal, hand-written .class byte stream for
// decode tests; there is no javac output available in this environment.
type classBuilder struct {
	buf bytes.Buffer
}

func (b *classBuilder) u1(v byte)  { b.buf.WriteByte(v) }
func (b *classBuilder) u2(v int)   { b.buf.WriteByte(byte(v >> 8)); b.buf.WriteByte(byte(v)) }
func (b *classBuilder) u4(v int)   { b.buf.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}) }
func (b *classBuilder) raw(p []byte) { b.buf.Write(p) }

func (b *classBuilder) utf8Constant(s string) {
	b.u1(byte(TagUtf8))
	b.u2(len(s))
	b.buf.WriteString(s)
}

func (b *classBuilder) classConstant(nameIdx int) {
	b.u1(byte(TagClass))
	b.u2(nameIdx)
}

// buildMinimalClass emits a single public class "Test" with one static int
// field "value" and one static method "get()I" whose body is
// `iconst_5; ireturn`.
func buildMinimalClass(t *testing.T) []byte {
	t.Helper()
	var b classBuilder

	b.u4(magic)
	b.u2(0)  // minor
	b.u2(52) // major

	// Constant pool: 7 entries (slots 1..7), count = 8.
	b.u2(8)
	b.utf8Constant("Test")   // 1
	b.classConstant(1)       // 2: class Test
	b.utf8Constant("value")  // 3
	b.utf8Constant("I")      // 4
	b.utf8Constant("get")    // 5
	b.utf8Constant("()I")    // 6
	b.utf8Constant("Code")   // 7

	b.u2(0x0021) // access flags
	b.u2(2)      // this_class
	b.u2(0)      // super_class
	b.u2(0)      // interfaces_count

	// fields_count = 1
	b.u2(1)
	b.u2(0x0008) // static
	b.u2(3)      // name "value"
	b.u2(4)      // descriptor "I"
	b.u2(0)      // attributes_count

	// methods_count = 1
	b.u2(1)
	b.u2(0x0009) // public static
	b.u2(5)      // name "get"
	b.u2(6)      // descriptor "()I"
	b.u2(1)      // attributes_count
	b.u2(7)      // attribute name "Code"
	code := []byte{0x08, 0xac} // iconst_5, ireturn
	b.u4(2 + 2 + 4 + len(code) + 2 + 2)
	b.u2(1)            // max_stack
	b.u2(0)            // max_locals
	b.u4(len(code))    // code_length
	b.raw(code)        // code
	b.u2(0)            // exception_table_count
	b.u2(0)            // Code attribute's own sub-attributes count

	b.u2(0) // class attributes_count (no BootstrapMethods)

	return b.buf.Bytes()
}

func TestDecodeMinimalClass(t *testing.T) {
	data := buildMinimalClass(t)

	class, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if class.BinaryName != "Test" {
		t.Errorf("BinaryName = %q, want %q", class.BinaryName, "Test")
	}
	if class.SuperName != "" {
		t.Errorf("SuperName = %q, want empty", class.SuperName)
	}
	if len(class.Fields) != 1 || class.Fields[0].Name != "value" || class.Fields[0].Descriptor != "I" {
		t.Fatalf("Fields = %+v, want one field value:I", class.Fields)
	}

	method, ok := class.FindMethod("get", "()I")
	if !ok {
		t.Fatalf("FindMethod(get, ()I) not found")
	}
	if !method.AccessFlagsStatic() {
		t.Errorf("method.AccessFlagsStatic() = false, want true")
	}
	if got := []byte{0x08, 0xac}; !bytes.Equal(method.Code.Bytes, got) {
		t.Errorf("Code.Bytes = %v, want %v", method.Code.Bytes, got)
	}
	if method.Code.MaxStack != 1 {
		t.Errorf("MaxStack = %d, want 1", method.Code.MaxStack)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := buildMinimalClass(t)
	data[0] = 0x00 // corrupt magic

	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Fatalf("Decode with corrupt magic: expected error, got nil")
	}
}

func TestDecodeConstantPoolAccessors(t *testing.T) {
	data := buildMinimalClass(t)
	class, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	name, err := class.ConstantPool.Utf8At(3)
	if err != nil {
		t.Fatalf("Utf8At(3): %v", err)
	}
	if name != "value" {
		t.Errorf("Utf8At(3) = %q, want %q", name, "value")
	}

	if _, err := class.ConstantPool.Utf8At(99); err == nil {
		t.Errorf("Utf8At(99): expected out-of-range error, got nil")
	}
}
