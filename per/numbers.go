// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package per

import (
	"errors"
	"math/bits"
)

var errFragmented = errors.New("per: fragmented lengths are not supported")

// ConstrainedWidth returns the number of bits occupied by the constrained
// whole-number encoding for the range lo to hi inclusive. A range containing
// a single value occupies no bits at all.
func ConstrainedWidth(lo, hi int64) int {
	return bits.Len64(uint64(hi) - uint64(lo))
}

// WriteConstrained writes n as a constrained whole number with the bounds lo
// and hi inclusive (X.691, 10.5). The offset from lo is written in the
// minimal fixed number of bits that can represent the range.
func (w *BitWriter) WriteConstrained(n, lo, hi int64) error {
	if n < lo || n > hi {
		return ErrRange
	}
	w.WriteBits(uint64(n)-uint64(lo), ConstrainedWidth(lo, hi))
	return nil
}

// ReadConstrained reads a constrained whole number with the bounds lo and hi
// inclusive.
func (r *BitReader) ReadConstrained(lo, hi int64) (int64, error) {
	offset, err := r.ReadBits(ConstrainedWidth(lo, hi))
	if err != nil {
		return 0, err
	}
	if offset > uint64(hi)-uint64(lo) {
		return 0, ErrRange
	}
	return lo + int64(offset), nil
}

// WriteSemiConstrained writes n as a semi-constrained whole number with the
// lower bound lo (X.691, 10.7). The offset from lo is written as a minimal
// octet sequence preceded by a length determinant.
func (w *BitWriter) WriteSemiConstrained(n, lo int64) error {
	if n < lo {
		return ErrRange
	}
	return w.writeOffset(uint64(n) - uint64(lo))
}

// ReadSemiConstrained reads a semi-constrained whole number with the lower
// bound lo.
func (r *BitReader) ReadSemiConstrained(lo int64) (int64, error) {
	offset, err := r.readOffset()
	if err != nil {
		return 0, err
	}
	n := lo + int64(offset)
	if offset > 1<<63-1 || n < lo {
		return 0, ErrRange
	}
	return n, nil
}

// WriteNormallySmall writes n as a normally small non-negative whole number
// (X.691, 10.6). Values below 64 occupy seven bits, larger values fall back
// to the semi-constrained encoding.
func (w *BitWriter) WriteNormallySmall(n uint64) error {
	if n < 64 {
		w.WriteBit(0)
		w.WriteBits(n, 6)
		return nil
	}
	w.WriteBit(1)
	return w.writeOffset(n)
}

// ReadNormallySmall reads a normally small non-negative whole number.
func (r *BitReader) ReadNormallySmall() (uint64, error) {
	large, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if large == 0 {
		return r.ReadBits(6)
	}
	return r.readOffset()
}

// WriteLength writes an unconstrained length determinant (X.691, 11.9).
// Lengths of 16384 and above require fragmentation, which is not supported.
func (w *BitWriter) WriteLength(n int) error {
	switch {
	case n < 0:
		panic("per: negative length")
	case n < 0x80:
		w.WriteBits(uint64(n), 8)
	case n < 0x4000:
		w.WriteBits(0b10<<14|uint64(n), 16)
	default:
		return errFragmented
	}
	return nil
}

// ReadLength reads an unconstrained length determinant.
func (r *BitReader) ReadLength() (int, error) {
	first, err := r.ReadBits(8)
	if err != nil {
		return 0, err
	}
	switch {
	case first < 0x80:
		return int(first), nil
	case first < 0xc0:
		second, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		return int(first&0x3f)<<8 | int(second), nil
	default:
		return 0, errFragmented
	}
}

// writeOffset writes a non-negative whole number as a minimal octet sequence
// preceded by a length determinant.
func (w *BitWriter) writeOffset(offset uint64) error {
	count := max((bits.Len64(offset)+7)/8, 1)
	if err := w.WriteLength(count); err != nil {
		return err
	}
	for i := count - 1; i >= 0; i-- {
		w.WriteBits(offset>>(i*8)&0xff, 8)
	}
	return nil
}

func (r *BitReader) readOffset() (uint64, error) {
	count, err := r.ReadLength()
	if err != nil {
		return 0, err
	}
	if count > 8 {
		return 0, ErrRange
	}
	var offset uint64
	for range count {
		octet, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		offset = offset<<8 | octet
	}
	return offset, nil
}
