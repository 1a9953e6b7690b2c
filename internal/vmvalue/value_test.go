package vmvalue

import "testing"

func TestIntegerCells(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want int64
	}{
		{"byte", Byte(-5), -5},
		{"short", Short(-1000), -1000},
		{"int", Int(42), 42},
		{"long", Long(1 << 40), 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.cell.IsInteger() {
				t.Fatalf("IsInteger() = false, want true")
			}
			if got := tt.cell.AsInt64(); got != tt.want {
				t.Errorf("AsInt64() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReferenceAndNull(t *testing.T) {
	ref := Reference(3)
	if ref.IsInteger() {
		t.Errorf("Reference.IsInteger() = true, want false")
	}
	if ref.IsNull() {
		t.Errorf("Reference(3).IsNull() = true, want false")
	}
	if !Null.IsNull() {
		t.Errorf("Null.IsNull() = false, want true")
	}
	if !Reference(-1).IsNull() {
		t.Errorf("Reference(-1).IsNull() = false, want true")
	}
}

func TestAsInt32Narrows(t *testing.T) {
	c := Long(0x1_0000_0001)
	if got := c.AsInt32(); got != 1 {
		t.Errorf("AsInt32() = %d, want 1", got)
	}
}

func TestEmptyCellIsNeitherIntegerNorNull(t *testing.T) {
	if Empty.IsInteger() {
		t.Errorf("Empty.IsInteger() = true, want false")
	}
	if Empty.IsNull() {
		t.Errorf("Empty.IsNull() = true, want false")
	}
	if Empty.AsInt64() != 0 {
		t.Errorf("Empty.AsInt64() = %d, want 0", Empty.AsInt64())
	}
}
