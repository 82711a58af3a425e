// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"unicode/utf8"

	"codello.dev/x690"
	"codello.dev/x690/internal/base128"
	"codello.dev/x690/tlv"
)

// This file contains the converters between the contents octets of primitive
// data value encodings and their Go values. The converters are pure functions
// on byte slices; identifier matching and reflection live in encode.go and
// decode.go. Encoding always produces the canonical DER form, decoding accepts
// the laxer BER forms where they exist.

//region BOOLEAN

func appendBool(dst []byte, b bool) []byte {
	if b {
		// DER requires TRUE to be encoded as 0xFF (X.690, 11.1)
		return append(dst, 0xff)
	}
	return append(dst, 0x00)
}

// decodeBool accepts any non-zero octet as TRUE as permitted by BER.
func decodeBool(val tlv.Value) (bool, error) {
	if len(val.Contents) != 1 {
		return false, &IncorrectLengthError{val.Identifier, len(val.Contents)}
	}
	return val.Contents[0] != 0, nil
}

//endregion

//region INTEGER

// intLen returns the number of octets of the minimal two's complement
// encoding of i.
func intLen(i int64) int {
	n := 1
	for i > 0x7f || i < -0x80 {
		n++
		i >>= 8
	}
	return n
}

func appendInt(dst []byte, i int64) []byte {
	for n := intLen(i); n > 0; n-- {
		dst = append(dst, byte(i>>(uint(n-1)*8)))
	}
	return dst
}

// uintLen returns the number of octets of the minimal two's complement
// encoding of u interpreted as a non-negative value.
func uintLen(u uint64) int {
	n := 1
	for u > 0x7f {
		n++
		u >>= 8
	}
	return n
}

func appendUint(dst []byte, u uint64) []byte {
	for n := uintLen(u); n > 0; n-- {
		dst = append(dst, byte(u>>(uint(n-1)*8)))
	}
	return dst
}

// intContents validates the two's complement contents octets of val. Empty
// contents and redundant leading octets are rejected (X.690, 8.3.2).
func intContents(val tlv.Value) ([]byte, error) {
	b := val.Contents
	if len(b) == 0 {
		return nil, &IncorrectLengthError{val.Identifier, 0}
	}
	if len(b) > 1 && (b[0] == 0x00 && b[1] < 0x80 || b[0] == 0xff && b[1] >= 0x80) {
		return nil, &EncodingError{val.Identifier, errNotMinimal}
	}
	return b, nil
}

func decodeInt64(val tlv.Value) (int64, error) {
	b, err := intContents(val)
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, errIntegerOverflow
	}
	var i int64
	if b[0]&0x80 != 0 {
		i = -1
	}
	for _, octet := range b {
		i = i<<8 | int64(octet)
	}
	return i, nil
}

func decodeUint64(val tlv.Value) (uint64, error) {
	b, err := intContents(val)
	if err != nil {
		return 0, err
	}
	if b[0]&0x80 != 0 {
		// negative value
		return 0, errIntegerOverflow
	}
	if b[0] == 0 {
		// values of 64 bits use a 9 octet encoding
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, errIntegerOverflow
	}
	var u uint64
	for _, octet := range b {
		u = u<<8 | uint64(octet)
	}
	return u, nil
}

var bigOne = big.NewInt(1)

func appendBigInt(dst []byte, n *big.Int) []byte {
	if n.Sign() < 0 {
		// the two's complement of n is the inverted encoding of |n|-1
		nMinus1 := new(big.Int).Neg(n)
		nMinus1.Sub(nMinus1, bigOne)
		b := nMinus1.Bytes()
		for i := range b {
			b[i] ^= 0xff
		}
		if len(b) == 0 || b[0]&0x80 == 0 {
			dst = append(dst, 0xff)
		}
		return append(dst, b...)
	}
	b := n.Bytes()
	if len(b) == 0 {
		return append(dst, 0x00)
	}
	if b[0]&0x80 != 0 {
		dst = append(dst, 0x00)
	}
	return append(dst, b...)
}

func decodeBigInt(val tlv.Value) (*big.Int, error) {
	b, err := intContents(val)
	if err != nil {
		return nil, err
	}
	n := new(big.Int)
	if b[0]&0x80 != 0 {
		inv := make([]byte, len(b))
		for i := range b {
			inv[i] = ^b[i]
		}
		n.SetBytes(inv)
		n.Add(n, bigOne)
		return n.Neg(n), nil
	}
	return n.SetBytes(b), nil
}

//endregion

//region BIT STRING

func appendBitString(dst []byte, s x690.BitString) ([]byte, error) {
	if !s.IsValid() {
		return dst, &EncodingError{x690.IdentifierBitString, errors.New("bit length exceeds available bytes")}
	}
	unused := uint(8-s.BitLength%8) % 8
	dst = append(dst, byte(unused))
	if s.BitLength == 0 {
		return dst, nil
	}
	n := (s.BitLength + 7) / 8
	dst = append(dst, s.Bytes[:n-1]...)
	// the padding bits of the final octet must be zero (X.690, 11.2)
	return append(dst, s.Bytes[n-1]&(0xff<<unused)), nil
}

func decodeBitString(val tlv.Value) (x690.BitString, error) {
	b := val.Contents
	if len(b) == 0 {
		return x690.BitString{}, &IncorrectLengthError{val.Identifier, 0}
	}
	unused := int(b[0])
	if unused > 7 || len(b) == 1 && unused > 0 {
		return x690.BitString{}, &EncodingError{val.Identifier, errBitPadding}
	}
	s := x690.BitString{
		Bytes:     bytes.Clone(b[1:]),
		BitLength: (len(b)-1)*8 - unused,
	}
	if unused > 0 {
		// BER does not restrict the padding bits, clear them
		s.Bytes[len(s.Bytes)-1] &= 0xff << uint(unused)
	}
	return s, nil
}

//endregion

//region OBJECT IDENTIFIER

func appendOID(dst []byte, oid x690.ObjectIdentifier) ([]byte, error) {
	if !oid.IsValid() {
		return dst, &EncodingError{x690.IdentifierOID, errors.New("invalid object identifier")}
	}
	if oid[1] > math.MaxUint64-80 {
		return dst, &EncodingError{x690.IdentifierOID, errors.New("second arc too large")}
	}
	// the first two arcs share a subidentifier (X.690, 8.19.4)
	dst = base128.Append(dst, oid[0]*40+oid[1])
	for _, arc := range oid[2:] {
		dst = base128.Append(dst, arc)
	}
	return dst, nil
}

func decodeOID(val tlv.Value) (x690.ObjectIdentifier, error) {
	b := val.Contents
	if len(b) == 0 {
		return nil, &IncorrectLengthError{val.Identifier, 0}
	}
	oid := make(x690.ObjectIdentifier, 1, len(b)+1)
	for len(b) > 0 {
		arc, n, err := base128.ParseMinimal(b)
		if err != nil {
			return nil, &EncodingError{val.Identifier, err}
		}
		oid = append(oid, arc)
		b = b[n:]
	}
	switch first := oid[1]; {
	case first < 40:
		oid[0] = 0
	case first < 80:
		oid[0], oid[1] = 1, first-40
	default:
		oid[0], oid[1] = 2, first-80
	}
	return oid, nil
}

func appendRelativeOID(dst []byte, oid x690.RelativeOID) []byte {
	for _, arc := range oid {
		dst = base128.Append(dst, arc)
	}
	return dst
}

func decodeRelativeOID(val tlv.Value) (x690.RelativeOID, error) {
	b := val.Contents
	oid := make(x690.RelativeOID, 0, len(b))
	for len(b) > 0 {
		arc, n, err := base128.ParseMinimal(b)
		if err != nil {
			return nil, &EncodingError{val.Identifier, err}
		}
		oid = append(oid, arc)
		b = b[n:]
	}
	return oid, nil
}

//endregion

//region Strings

// stringValid reports whether s satisfies the alphabet of the universal string
// type with the given tag number.
func stringValid(number uint64, s string) bool {
	switch number {
	case x690.TagUTF8String:
		return utf8.ValidString(s)
	case x690.TagNumericString:
		return x690.NumericString(s).IsValid()
	case x690.TagPrintableString:
		return x690.PrintableString(s).IsValid()
	case x690.TagIA5String:
		return x690.IA5String(s).IsValid()
	case x690.TagVisibleString:
		return x690.VisibleString(s).IsValid()
	}
	return true
}

//endregion
