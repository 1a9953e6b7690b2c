package interp

import "testing"

func TestArithIntFamily(t *testing.T) {
	tests := []struct {
		op     byte
		a, b   int32
		want   int32
		errMsg string
	}{
		{opIadd, 3, 4, 7, ""},
		{opIsub, 10, 3, 7, ""},
		{opImul, 6, 7, 42, ""},
		{opIdiv, 20, 4, 5, ""},
		{opIrem, 20, 6, 2, ""},
		{opIdiv, 1, 0, 0, "division by zero"},
	}

	e := &Engine{}
	for _, tt := range tests {
		f := newTestFrame(nil)
		if err := f.Stack.PushInt(tt.a); err != nil {
			t.Fatal(err)
		}
		if err := f.Stack.PushInt(tt.b); err != nil {
			t.Fatal(err)
		}
		err := e.arith(f, tt.op)
		if tt.errMsg != "" {
			if err == nil || err.Error() != tt.errMsg {
				t.Errorf("op %#x: err = %v, want %q", tt.op, err, tt.errMsg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("op %#x: %v", tt.op, err)
		}
		got, err := f.Stack.PopInt32()
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("op %#x: result = %d, want %d", tt.op, got, tt.want)
		}
	}
}

func TestArithSubtractOperandOrder(t *testing.T) {
	// Java stack order: second-popped is the left operand, so pushing 10
	// then 3 and subtracting must yield 10-3=7, not 3-10.
	f := newTestFrame(nil)
	if err := f.Stack.PushInt(10); err != nil {
		t.Fatal(err)
	}
	if err := f.Stack.PushInt(3); err != nil {
		t.Fatal(err)
	}
	e := &Engine{}
	if err := e.arith(f, opIsub); err != nil {
		t.Fatal(err)
	}
	got, err := f.Stack.PopInt32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("10-3 = %d, want 7", got)
	}
}

func TestArithIneg(t *testing.T) {
	f := newTestFrame(nil)
	if err := f.Stack.PushInt(5); err != nil {
		t.Fatal(err)
	}
	e := &Engine{}
	if err := e.arith(f, opIneg); err != nil {
		t.Fatal(err)
	}
	got, err := f.Stack.PopInt32()
	if err != nil {
		t.Fatal(err)
	}
	if got != -5 {
		t.Errorf("ineg(5) = %d, want -5", got)
	}
}
