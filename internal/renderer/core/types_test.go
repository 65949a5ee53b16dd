package core

import "testing"

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		want    Color
		wantErr bool
	}{
		{"#ff0000", Color{R: 255}, false},
		{"00ff00", Color{G: 255}, false},
		{"#abc", Color{R: 0xAA, G: 0xBB, B: 0xCC}, false},
		{"#12345", Color{}, true},
		{"#zzzzzz", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := ColorFromHex(tt.hex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorBlend(t *testing.T) {
	black := ColorFromRGB(0, 0, 0)
	white := ColorFromRGB(255, 255, 255)

	mid := black.Blend(white, 0.5)
	if mid.R < 64 || mid.R > 200 {
		t.Errorf("unexpected midpoint %v", mid)
	}

	// Default colors snap to the nearer operand.
	if got := ColorDefault.Blend(white, 0.2); !got.IsDefault() {
		t.Errorf("expected default, got %v", got)
	}
	if got := ColorDefault.Blend(white, 0.8); got != white {
		t.Errorf("expected white, got %v", got)
	}
}

func TestAttributeSet(t *testing.T) {
	a := AttrNone
	if a.Has(AttrBold) {
		t.Error("empty set should not contain bold")
	}

	s := DefaultStyle().Bold().Reverse()
	if !s.Attributes.Has(AttrBold) || !s.Attributes.Has(AttrReverse) {
		t.Error("expected bold and reverse set")
	}
}
