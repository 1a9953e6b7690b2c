package interp

import (
	"testing"

	"github.com/halsted/minijvm/internal/objectheap"
	"github.com/halsted/minijvm/internal/vmvalue"
)

// TestConcatOperandOrder reproduces the spec's worked example: recipe
// "x=\x01, y=\x01" with 3 pushed then 4 pushed yields "x=4, y=3", since
// operands are popped most-recently-pushed-first and substituted into the
// recipe left to right.
func TestConcatOperandOrder(t *testing.T) {
	e := &Engine{Objects: objectheap.New()}

	f := newTestFrame(nil)
	if err := f.Stack.PushInt(3); err != nil {
		t.Fatal(err)
	}
	if err := f.Stack.PushInt(4); err != nil {
		t.Fatal(err)
	}

	recipe := "x=" + string(rune(concatPlaceholder)) + ", y=" + string(rune(concatPlaceholder))

	placeholders := 2
	operands := make([]string, placeholders)
	for i := 0; i < placeholders; i++ {
		c, err := f.Stack.Pop()
		if err != nil {
			t.Fatal(err)
		}
		s, err := e.operandText(c)
		if err != nil {
			t.Fatal(err)
		}
		operands[i] = s
	}

	var got string
	next := 0
	for i := 0; i < len(recipe); i++ {
		if recipe[i] == concatPlaceholder {
			got += operands[next]
			next++
			continue
		}
		got += string(recipe[i])
	}

	if want := "x=4, y=3"; got != want {
		t.Errorf("concat result = %q, want %q", got, want)
	}
}

func TestOperandTextInteger(t *testing.T) {
	e := &Engine{Objects: objectheap.New()}
	s, err := e.operandText(vmvalue.Int(42))
	if err != nil {
		t.Fatal(err)
	}
	if s != "42" {
		t.Errorf("operandText(Int(42)) = %q, want %q", s, "42")
	}
}

func TestOperandTextStringReference(t *testing.T) {
	objects := objectheap.New()
	ref, err := objects.CreateString("hello")
	if err != nil {
		t.Fatal(err)
	}
	e := &Engine{Objects: objects}
	s, err := e.operandText(vmvalue.Reference(ref))
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" {
		t.Errorf("operandText(ref) = %q, want %q", s, "hello")
	}
}
