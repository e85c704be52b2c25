package smf

import (
	"bytes"
	"testing"
)

func TestAppendVLQ(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		want  []byte
	}{
		{"zero", 0x00000000, []byte{0x00}},
		{"one byte max", 0x0000007F, []byte{0x7F}},
		{"two bytes min", 0x00000080, []byte{0x81, 0x00}},
		{"two bytes max", 0x00003FFF, []byte{0xFF, 0x7F}},
		{"three bytes min", 0x00004000, []byte{0x81, 0x80, 0x00}},
		{"three bytes max", 0x001FFFFF, []byte{0xFF, 0xFF, 0x7F}},
		{"four bytes min", 0x00200000, []byte{0x81, 0x80, 0x80, 0x00}},
		{"four bytes max", 0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		{"quarter note", 480, []byte{0x83, 0x60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendVLQ(nil, tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendVLQ(%#x) = % X, want % X", tt.value, got, tt.want)
			}
		})
	}
}

func TestAppendVLQ_TooLarge(t *testing.T) {
	if _, err := AppendVLQ(nil, MaxVLQ+1); err == nil {
		t.Error("expected error for value above MaxVLQ, got nil")
	}
}

func TestReadVLQ_FiveBytes(t *testing.T) {
	r := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	if _, err := ReadVLQ(r); err == nil {
		t.Error("expected error for five-byte quantity, got nil")
	}
}

func TestReadVLQ_Truncated(t *testing.T) {
	r := bytes.NewReader([]byte{0x81})
	if _, err := ReadVLQ(r); err == nil {
		t.Error("expected error for truncated quantity, got nil")
	}
}
