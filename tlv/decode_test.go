package tlv

import (
	"bytes"
	"errors"
	"testing"

	"codello.dev/x690"
)

func TestParseIdentifier(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		want    x690.Identifier
		wantN   int
		wantErr bool
	}{
		"UniversalBool":      {data: []byte{0x01}, want: x690.Identifier{Number: 1}, wantN: 1},
		"PrivatePrimitive":   {data: []byte{0xC0}, want: x690.Identifier{Class: x690.ClassPrivate}, wantN: 1},
		"ContextConstructed": {data: []byte{0xA0}, want: x690.Identifier{Class: x690.ClassContextSpecific, Constructed: true}, wantN: 1},
		"HighTagForm": {
			data:  []byte{0xFF, 0x8F, 0xFF, 0xFF, 0xFF, 0x7F},
			want:  x690.Identifier{Class: x690.ClassPrivate, Constructed: true, Number: 0xFF_FF_FF_FF},
			wantN: 6,
		},
		"Truncated":     {data: []byte{}, wantErr: true},
		"TruncatedHigh": {data: []byte{0x1F, 0x88}, wantErr: true},
		"NotMinimal":    {data: []byte{0x1F, 0x80, 0x01}, wantErr: true},
		"Overflow":      {data: []byte{0x1F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, n, err := ParseIdentifier(tc.data)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseIdentifier() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIdentifier() error = %v", err)
			}
			if got != tc.want || n != tc.wantN {
				t.Errorf("ParseIdentifier() = %v, %d, want %v, %d", got, n, tc.want, tc.wantN)
			}
		})
	}
}

// TestIdentifierRoundTrip covers the tag numbers around the low/high-tag form
// boundary at 31 and around the base-128 continuation boundaries.
func TestIdentifierRoundTrip(t *testing.T) {
	for _, number := range []uint64{0, 1, 30, 31, 127, 128, 16383, 16384, 1<<64 - 1} {
		for _, class := range []x690.Class{x690.ClassUniversal, x690.ClassApplication, x690.ClassContextSpecific, x690.ClassPrivate} {
			id := x690.Identifier{Class: class, Constructed: number%2 == 0, Number: number}
			b := AppendIdentifier(nil, id)
			if len(b) != IdentifierLen(id) {
				t.Errorf("IdentifierLen(%v) = %d, want %d", id, IdentifierLen(id), len(b))
			}
			got, n, err := ParseIdentifier(b)
			if err != nil {
				t.Fatalf("ParseIdentifier(% X) error = %v", b, err)
			}
			if got != id || n != len(b) {
				t.Errorf("ParseIdentifier(% X) = %v, %d, want %v, %d", b, got, n, id, len(b))
			}
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		want    int
		wantN   int
		wantErr bool
	}{
		"ShortZero":   {data: []byte{0x00}, want: 0, wantN: 1},
		"ShortMax":    {data: []byte{0x7F}, want: 127, wantN: 1},
		"Long128":     {data: []byte{0x81, 0x80}, want: 128, wantN: 2},
		"Long256":     {data: []byte{0x82, 0x01, 0x00}, want: 256, wantN: 3},
		"Indefinite":  {data: []byte{0x80}, want: LengthIndefinite, wantN: 1},
		"Reserved":    {data: []byte{0xFF}, wantErr: true},
		"Truncated":   {data: []byte{0x82, 0x01}, wantErr: true},
		"Empty":       {data: nil, wantErr: true},
		"LeadingZero": {data: []byte{0x82, 0x00, 0x2A}, want: 42, wantN: 3},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, n, err := ParseLength(tc.data)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseLength() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLength() error = %v", err)
			}
			if got != tc.want || n != tc.wantN {
				t.Errorf("ParseLength(% X) = %d, %d, want %d, %d", tc.data, got, n, tc.want, tc.wantN)
			}
		})
	}
}

// TestLengthRoundTrip covers the boundaries between the short and long length
// forms as well as the long-form byte count boundaries.
func TestLengthRoundTrip(t *testing.T) {
	for _, length := range []int{0, 1, 127, 128, 255, 256, 65535, 65536} {
		b := AppendLength(nil, length)
		if len(b) != LengthLen(length) {
			t.Errorf("LengthLen(%d) = %d, want %d", length, LengthLen(length), len(b))
		}
		got, n, err := ParseLength(b)
		if err != nil {
			t.Fatalf("ParseLength(% X) error = %v", b, err)
		}
		if got != length || n != len(b) {
			t.Errorf("ParseLength(% X) = %d, %d, want %d, %d", b, got, n, length, len(b))
		}
	}
}

func TestParse(t *testing.T) {
	tests := map[string]struct {
		data     []byte
		want     Value
		wantRest int // number of bytes remaining
		wantErr  error
	}{
		"PrimitiveBool": {
			data: []byte{0x01, 0x01, 0xFF},
			want: Value{x690.Identifier{Number: 1}, []byte{0xFF}},
		},
		"LongLengthForm": {
			data: []byte{0x01, 0x81, 0x02, 0xF0, 0xF0},
			want: Value{x690.Identifier{Number: 1}, []byte{0xF0, 0xF0}},
		},
		"IndefiniteLength": {
			data: []byte{0x01, 0x80, 0xF0, 0xF0, 0x00, 0x00},
			want: Value{x690.Identifier{Number: 1}, []byte{0xF0, 0xF0}},
		},
		"IndefiniteConstructed": {
			data: []byte{0x30, 0x80, 0x01, 0x01, 0xFF, 0x00, 0x00},
			want: Value{
				x690.Identifier{Constructed: true, Number: 16},
				[]byte{0x01, 0x01, 0xFF},
			},
		},
		"NestedIndefinite": {
			// the inner end-of-contents must not terminate the outer value
			data: []byte{0x30, 0x80, 0x30, 0x80, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00},
			want: Value{
				x690.Identifier{Constructed: true, Number: 16},
				[]byte{0x30, 0x80, 0x00, 0x00, 0x01, 0x01, 0x00},
			},
		},
		"TrailingData": {
			data:     []byte{0x05, 0x00, 0x01, 0x01, 0xFF},
			want:     Value{x690.Identifier{Number: 5}, []byte{}},
			wantRest: 3,
		},
		"Truncated":           {data: []byte{0x04, 0x03, 0x01}, wantErr: ErrTruncated},
		"TruncatedIndefinite": {data: []byte{0x30, 0x80, 0x01, 0x01, 0xFF}, wantErr: ErrTruncated},
		"ForgedLength": {
			// declared length far beyond the input must fail before allocating
			data:    []byte{0x04, 0x84, 0x7F, 0xFF, 0xFF, 0xFF, 0x01},
			wantErr: ErrTruncated,
		},
		"BareEOC": {data: []byte{0x00, 0x00}, wantErr: errUnexpectedEOC},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, rest, err := Parse(tc.data)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Identifier != tc.want.Identifier || !bytes.Equal(got.Contents, tc.want.Contents) {
				t.Errorf("Parse() = %v (% X), want %v (% X)", got, got.Contents, tc.want, tc.want.Contents)
			}
			if len(rest) != tc.wantRest {
				t.Errorf("Parse() len(rest) = %d, want %d", len(rest), tc.wantRest)
			}
		})
	}
}

// TestParseDepth verifies that deeply nested indefinite-length encodings are
// rejected instead of exhausting the stack.
func TestParseDepth(t *testing.T) {
	var data []byte
	for range MaxNestingDepth + 1 {
		data = append(data, 0x30, 0x80)
	}
	for range MaxNestingDepth + 1 {
		data = append(data, 0x00, 0x00)
	}
	if _, _, err := Parse(data); !errors.Is(err, ErrDepth) {
		t.Errorf("Parse() error = %v, want %v", err, ErrDepth)
	}
}

func FuzzParse(f *testing.F) {
	f.Add([]byte{0x01, 0x01, 0xFF})
	f.Add([]byte{0x30, 0x80, 0x01, 0x01, 0x00, 0x00, 0x00})
	f.Add([]byte{0x1F, 0x88, 0x02, 0x01, 0x2A})
	f.Add([]byte{0x04, 0x84, 0xFF, 0xFF, 0xFF, 0xFF})
	f.Fuzz(func(t *testing.T, data []byte) {
		// must never panic or read out of bounds
		v, rest, err := Parse(data)
		if err != nil {
			return
		}
		if EncodedLen(v.Identifier, len(v.Contents)) > len(data)-len(rest) {
			// re-encoding may be shorter than a non-minimal input, never longer
			t.Errorf("Parse() consumed fewer bytes than the minimal encoding of its result")
		}
	})
}
