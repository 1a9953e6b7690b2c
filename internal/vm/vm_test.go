package vm

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/halsted/minijvm/internal/vmvalue"
)

// buildSumClass emits a class "Sum" with a static int field "total" and a
// main([Ljava/lang/String;)V that sums 1..10 into a local and writes the
// result back via putstatic, exercising branch/loop, locals, and static
// field storage end to end through the real decoder and interpreter.
func buildSumClass(t *testing.T) []byte {
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

	u2(10) // constant_pool_count
	utf8("Sum")                      // 1
	buf.WriteByte(7); u2(1)           // 2: Class -> Sum
	utf8("total")                     // 3
	utf8("I")                         // 4
	buf.WriteByte(12); u2(3); u2(4)   // 5: NameAndType(total, I)
	buf.WriteByte(9); u2(2); u2(5)    // 6: FieldRef(Sum.total:I)
	utf8("main")                      // 7
	utf8("([Ljava/lang/String;)V")    // 8
	utf8("Code")                      // 9

	u2(0x0021) // access flags
	u2(2)      // this_class
	u2(0)      // super_class
	u2(0)      // interfaces_count

	u2(1) // fields_count
	u2(0x0008)
	u2(3)
	u2(4)
	u2(0)

	code := []byte{
		0x03,             // iconst_0
		0x3d,             // istore_2      (sum = 0)
		0x04,             // iconst_1
		0x3c,             // istore_1      (i = 1)
		0x1b,             // iload_1       <- loop (pc 4)
		0x10, 0x0a,       // bipush 10
		0xa3, 0x00, 0x0d, // if_icmpgt +13 -> pc 20 (end)
		0x1c,             // iload_2
		0x1b,             // iload_1
		0x60,             // iadd
		0x3d,             // istore_2      (sum += i)
		0x84, 0x01, 0x01, // iinc 1, 1     (i++)
		0xa7, 0xff, 0xf3, // goto -13 -> pc 4 (loop)
		0x1c,             // iload_2       <- end (pc 20)
		0xb3, 0x00, 0x06, // putstatic #6  (total = sum)
		0xb1,             // return
	}

	u2(1) // methods_count
	u2(0x0009)
	u2(7) // name "main"
	u2(8) // descriptor
	u2(1) // attributes_count
	u2(9) // attribute name "Code"
	u4(2 + 2 + 4 + len(code) + 2 + 2)
	u2(2) // max_stack
	u2(3) // max_locals (args, i, sum)
	u4(len(code))
	buf.Write(code)
	u2(0) // exception_table_count
	u2(0) // Code's own sub-attributes

	u2(0) // class attributes_count

	return buf.Bytes()
}

func TestRunLoopAccumulatesStaticField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Sum.class")
	if err := os.WriteFile(path, buildSumClass(t), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	machine := New(path, new(bytes.Buffer), bytes.NewReader(nil), nil)
	if err := machine.Run(path, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	class, ok := machine.Classes.Find("Sum")
	if !ok {
		t.Fatalf("class Sum not registered after Run")
	}
	idx, ok := class.FindField("total")
	if !ok {
		t.Fatalf("field total not found")
	}
	got := class.Fields[idx].Value
	if got.Tag != vmvalue.TagInt || got.I != 55 {
		t.Errorf("Sum.total = %+v, want Int cell with I=55", got)
	}
}
