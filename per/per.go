// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package per implements a subset of the ASN.1 Packed Encoding Rules (PER)
// as specified in [Rec. ITU-T X.691]: bit-level I/O and the whole-number
// encodings that PER builds all other encodings on. Only the unaligned
// variant (UPER) is implemented.
//
// In contrast to the encoding rules of the BER family, PER produces a bit
// stream without octet alignment or tag-length framing. The [BitWriter] and
// [BitReader] types provide the bit-level stream, the methods defined in this
// package implement the constrained, semi-constrained and normally small
// whole-number encodings on top of it.
//
// [Rec. ITU-T X.691]: https://www.itu.int/rec/T-REC-X.691
package per

import "errors"

// ErrTruncated indicates that a read consumed more bits than the input
// contains.
var ErrTruncated = errors.New("per: not enough bits")

// ErrRange indicates that a value lies outside of the bounds of its
// constraint.
var ErrRange = errors.New("per: value out of range")

// A BitWriter assembles a bit string, most significant bit first. The zero
// value is an empty writer ready for use.
type BitWriter struct {
	buf  []byte
	bits int
}

// Len returns the number of bits written so far.
func (w *BitWriter) Len() int {
	return w.bits
}

// Bytes returns the assembled bit string, padded with zero bits up to the
// next byte boundary. The slice shares memory with the writer.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}

// WriteBit appends a single bit. Any non-zero value is written as a one bit.
func (w *BitWriter) WriteBit(bit uint) {
	if w.bits%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if bit != 0 {
		w.buf[w.bits/8] |= 0x80 >> (w.bits % 8)
	}
	w.bits++
}

// WriteBits appends the width least significant bits of value, most
// significant bit first. WriteBits panics if width is not in the range 0 to
// 64 or if value does not fit into width bits.
func (w *BitWriter) WriteBits(value uint64, width int) {
	if width < 0 || width > 64 {
		panic("per: invalid bit width")
	}
	if width < 64 && value>>width != 0 {
		panic("per: value does not fit into width bits")
	}
	for i := width - 1; i >= 0; i-- {
		w.WriteBit(uint(value>>i) & 1)
	}
}

// WriteBytes appends the bits of b in order.
func (w *BitWriter) WriteBytes(b []byte) {
	for _, octet := range b {
		w.WriteBits(uint64(octet), 8)
	}
}

// A BitReader consumes a bit string, most significant bit first.
type BitReader struct {
	buf []byte
	pos int
}

// NewBitReader returns a BitReader reading the bits of b.
func NewBitReader(b []byte) *BitReader {
	return &BitReader{buf: b}
}

// Remaining returns the number of unread bits.
func (r *BitReader) Remaining() int {
	return len(r.buf)*8 - r.pos
}

// ReadBit consumes and returns a single bit.
func (r *BitReader) ReadBit() (uint, error) {
	if r.pos >= len(r.buf)*8 {
		return 0, ErrTruncated
	}
	bit := uint(r.buf[r.pos/8]>>(7-r.pos%8)) & 1
	r.pos++
	return bit, nil
}

// ReadBits consumes width bits and returns them as the least significant bits
// of the result. ReadBits panics if width is not in the range 0 to 64.
func (r *BitReader) ReadBits(width int) (uint64, error) {
	if width < 0 || width > 64 {
		panic("per: invalid bit width")
	}
	if r.Remaining() < width {
		return 0, ErrTruncated
	}
	var value uint64
	for range width {
		bit, _ := r.ReadBit()
		value = value<<1 | uint64(bit)
	}
	return value, nil
}

// ReadBytes consumes n octets worth of bits.
func (r *BitReader) ReadBytes(n int) ([]byte, error) {
	if r.Remaining() < n*8 {
		return nil, ErrTruncated
	}
	b := make([]byte, n)
	for i := range b {
		octet, _ := r.ReadBits(8)
		b[i] = byte(octet)
	}
	return b, nil
}
