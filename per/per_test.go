// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package per

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestBitWriter(t *testing.T) {
	var w BitWriter
	w.WriteBit(1)
	w.WriteBits(0b0101, 4)
	w.WriteBytes([]byte{0xFF})
	if w.Len() != 13 {
		t.Errorf("Len() = %d, want 13", w.Len())
	}
	// 1 0101 11111111 000 padded
	want := []byte{0xAF, 0xF8}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes() = % X, want % X", w.Bytes(), want)
	}
}

func TestBitReader(t *testing.T) {
	r := NewBitReader([]byte{0xAF, 0xF8})
	if bit, err := r.ReadBit(); err != nil || bit != 1 {
		t.Fatalf("ReadBit() = %d, %v, want 1, nil", bit, err)
	}
	if v, err := r.ReadBits(4); err != nil || v != 0b0101 {
		t.Fatalf("ReadBits(4) = %b, %v, want 101, nil", v, err)
	}
	if b, err := r.ReadBytes(1); err != nil || !bytes.Equal(b, []byte{0xFF}) {
		t.Fatalf("ReadBytes(1) = % X, %v, want FF, nil", b, err)
	}
	if r.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", r.Remaining())
	}
	if _, err := r.ReadBits(4); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadBits(4) error = %v, want %v", err, ErrTruncated)
	}
}

func TestConstrainedWidth(t *testing.T) {
	tests := map[string]struct {
		lo, hi int64
		want   int
	}{
		"SingleValue": {5, 5, 0},
		"TwoValues":   {0, 1, 1},
		"Octet":       {0, 255, 8},
		"Offset":      {1000, 1007, 3},
		"Negative":    {-3, 4, 3},
		"FullRange":   {math.MinInt64, math.MaxInt64, 64},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ConstrainedWidth(tc.lo, tc.hi); got != tc.want {
				t.Errorf("ConstrainedWidth(%d, %d) = %d, want %d", tc.lo, tc.hi, got, tc.want)
			}
		})
	}
}

func TestConstrainedRoundTrip(t *testing.T) {
	tests := []struct {
		n, lo, hi int64
	}{
		{5, 5, 5},
		{0, 0, 1},
		{5, 0, 7},
		{255, 0, 255},
		{1003, 1000, 1007},
		{-2, -3, 4},
		{0, math.MinInt64, math.MaxInt64},
	}
	for _, tc := range tests {
		var w BitWriter
		if err := w.WriteConstrained(tc.n, tc.lo, tc.hi); err != nil {
			t.Fatalf("WriteConstrained(%d, %d, %d) error = %v", tc.n, tc.lo, tc.hi, err)
		}
		if w.Len() != ConstrainedWidth(tc.lo, tc.hi) {
			t.Errorf("WriteConstrained(%d, %d, %d) wrote %d bits, want %d", tc.n, tc.lo, tc.hi, w.Len(), ConstrainedWidth(tc.lo, tc.hi))
		}
		got, err := NewBitReader(w.Bytes()).ReadConstrained(tc.lo, tc.hi)
		if err != nil {
			t.Fatalf("ReadConstrained(%d, %d) error = %v", tc.lo, tc.hi, err)
		}
		if got != tc.n {
			t.Errorf("ReadConstrained(%d, %d) = %d, want %d", tc.lo, tc.hi, got, tc.n)
		}
	}
}

func TestConstrainedRange(t *testing.T) {
	var w BitWriter
	if err := w.WriteConstrained(8, 0, 7); !errors.Is(err, ErrRange) {
		t.Errorf("WriteConstrained(8, 0, 7) error = %v, want %v", err, ErrRange)
	}
	// 3 bits of value 6 for the range 0..5
	r := NewBitReader([]byte{0xC0})
	if _, err := r.ReadConstrained(0, 5); !errors.Is(err, ErrRange) {
		t.Errorf("ReadConstrained(0, 5) error = %v, want %v", err, ErrRange)
	}
}

func TestSemiConstrainedRoundTrip(t *testing.T) {
	for _, tc := range []struct{ n, lo int64 }{
		{0, 0},
		{127, 0},
		{128, 0},
		{4096, 1},
		{-5, -10},
		{math.MaxInt64, 0},
	} {
		var w BitWriter
		if err := w.WriteSemiConstrained(tc.n, tc.lo); err != nil {
			t.Fatalf("WriteSemiConstrained(%d, %d) error = %v", tc.n, tc.lo, err)
		}
		got, err := NewBitReader(w.Bytes()).ReadSemiConstrained(tc.lo)
		if err != nil {
			t.Fatalf("ReadSemiConstrained(%d) error = %v", tc.lo, err)
		}
		if got != tc.n {
			t.Errorf("ReadSemiConstrained(%d) = %d, want %d", tc.lo, got, tc.n)
		}
	}
}

func TestSemiConstrainedBelowBound(t *testing.T) {
	var w BitWriter
	if err := w.WriteSemiConstrained(5, 10); !errors.Is(err, ErrRange) {
		t.Errorf("WriteSemiConstrained(5, 10) error = %v, want %v", err, ErrRange)
	}
}

func TestNormallySmallRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 10, 63, 64, 255, 1 << 32} {
		var w BitWriter
		if err := w.WriteNormallySmall(n); err != nil {
			t.Fatalf("WriteNormallySmall(%d) error = %v", n, err)
		}
		if n < 64 && w.Len() != 7 {
			t.Errorf("WriteNormallySmall(%d) wrote %d bits, want 7", n, w.Len())
		}
		got, err := NewBitReader(w.Bytes()).ReadNormallySmall()
		if err != nil {
			t.Fatalf("ReadNormallySmall() error = %v", err)
		}
		if got != n {
			t.Errorf("ReadNormallySmall() = %d, want %d", got, n)
		}
	}
}

func TestLengthDeterminant(t *testing.T) {
	tests := map[string]struct {
		n    int
		want []byte
	}{
		"Zero":     {0, []byte{0x00}},
		"ShortMax": {127, []byte{0x7F}},
		"LongMin":  {128, []byte{0x80, 0x80}},
		"LongMax":  {16383, []byte{0xBF, 0xFF}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var w BitWriter
			if err := w.WriteLength(tc.n); err != nil {
				t.Fatalf("WriteLength(%d) error = %v", tc.n, err)
			}
			if !bytes.Equal(w.Bytes(), tc.want) {
				t.Errorf("WriteLength(%d) = % X, want % X", tc.n, w.Bytes(), tc.want)
			}
			got, err := NewBitReader(w.Bytes()).ReadLength()
			if err != nil {
				t.Fatalf("ReadLength() error = %v", err)
			}
			if got != tc.n {
				t.Errorf("ReadLength() = %d, want %d", got, tc.n)
			}
		})
	}

	var w BitWriter
	if err := w.WriteLength(16384); err == nil {
		t.Errorf("WriteLength(16384) error = nil, want non-nil")
	}
	if _, err := NewBitReader([]byte{0xC1}).ReadLength(); err == nil {
		t.Errorf("ReadLength() error = nil, want non-nil")
	}
}

func ExampleBitWriter_WriteConstrained() {
	var w BitWriter
	_ = w.WriteConstrained(5, 0, 7)
	fmt.Printf("%d bits: % X\n", w.Len(), w.Bytes())

	// Output: 3 bits: A0
}

func FuzzReadConstrained(f *testing.F) {
	f.Add([]byte{0xA0}, int64(0), int64(7))
	f.Fuzz(func(t *testing.T, data []byte, lo, hi int64) {
		if lo > hi {
			lo, hi = hi, lo
		}
		r := NewBitReader(data)
		n, err := r.ReadConstrained(lo, hi)
		if err != nil {
			return
		}
		if n < lo || n > hi {
			t.Errorf("ReadConstrained(%d, %d) = %d, out of range", lo, hi, n)
		}
	})
}
