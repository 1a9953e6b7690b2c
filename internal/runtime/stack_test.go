package runtime

import (
	"testing"

	"github.com/halsted/minijvm/internal/vmvalue"
)

func TestStackPushPopOrder(t *testing.T) {
	s := NewStack(4)
	for _, v := range []int32{1, 2, 3} {
		if err := s.PushInt(v); err != nil {
			t.Fatalf("PushInt(%d): %v", v, err)
		}
	}
	for _, want := range []int32{3, 2, 1} {
		got, err := s.PopInt32()
		if err != nil {
			t.Fatalf("PopInt32(): %v", err)
		}
		if got != want {
			t.Errorf("PopInt32() = %d, want %d", got, want)
		}
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack(1)
	if err := s.PushInt(1); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := s.PushInt(2); err == nil {
		t.Errorf("expected overflow error, got nil")
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack(1)
	if _, err := s.Pop(); err == nil {
		t.Errorf("expected underflow error, got nil")
	}
}

func TestPopToLocalPreservesReferenceTag(t *testing.T) {
	s := NewStack(1)
	locals := NewLocals(1)

	if err := s.Push(vmvalue.Reference(7)); err != nil {
		t.Fatalf("push ref: %v", err)
	}
	if err := s.PopToLocal(locals, 0); err != nil {
		t.Fatalf("PopToLocal: %v", err)
	}
	got, err := locals.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if got.Tag != vmvalue.TagRef || got.Ref != 7 {
		t.Errorf("local = %+v, want ref cell with Ref=7", got)
	}
}

func TestPopToLocalWidensIntegerToLong(t *testing.T) {
	s := NewStack(1)
	locals := NewLocals(1)

	if err := s.Push(vmvalue.Byte(5)); err != nil {
		t.Fatalf("push byte: %v", err)
	}
	if err := s.PopToLocal(locals, 0); err != nil {
		t.Fatalf("PopToLocal: %v", err)
	}
	got, err := locals.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if got.Tag != vmvalue.TagLong || got.I != 5 {
		t.Errorf("local = %+v, want long cell with I=5", got)
	}
}

func TestPeekDoesNotPop(t *testing.T) {
	s := NewStack(2)
	if err := s.PushInt(9); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := s.Peek(); err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() after Peek = %d, want 1", s.Len())
	}
}
