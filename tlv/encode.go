package tlv

import (
	"math/bits"

	"codello.dev/x690"
	"codello.dev/x690/internal/base128"
)

// IdentifierLen returns the number of bytes [AppendIdentifier] writes for id.
func IdentifierLen(id x690.Identifier) int {
	if id.Number < 0x1f {
		return 1
	}
	return 1 + base128.Len(id.Number)
}

// AppendIdentifier appends the identifier octets of id to dst and returns the
// extended slice. Tag numbers up to 30 use the low-tag form, larger numbers
// the high-tag (base-128) form.
func AppendIdentifier(dst []byte, id x690.Identifier) []byte {
	b := byte(id.Class) << 6
	if id.Constructed {
		b |= 0x20
	}
	if id.Number < 0x1f {
		return append(dst, b|byte(id.Number))
	}
	return base128.Append(append(dst, b|0x1f), id.Number)
}

// LengthLen returns the number of bytes [AppendLength] writes for length.
func LengthLen(length int) int {
	if length < 0x80 {
		return 1
	}
	return 1 + (bits.Len(uint(length))+7)/8
}

// AppendLength appends the length octets for length to dst and returns the
// extended slice. The definite form is always used: the short form for
// lengths up to 127 and the minimal long form beyond, as required by DER.
// length must not be negative.
func AppendLength(dst []byte, length int) []byte {
	if length < 0 {
		panic("tlv: negative length")
	}
	if length < 0x80 {
		return append(dst, byte(length))
	}
	numBytes := (bits.Len(uint(length)) + 7) / 8
	dst = append(dst, 0x80|byte(numBytes))
	for i := numBytes - 1; i >= 0; i-- {
		dst = append(dst, byte(length>>(i*8)))
	}
	return dst
}

// EncodedLen returns the total number of bytes occupied by a data value
// encoding with the given identifier and contents length.
func EncodedLen(id x690.Identifier, contentsLen int) int {
	return IdentifierLen(id) + LengthLen(contentsLen) + contentsLen
}

// Append appends the complete data value encoding of v to dst and returns the
// extended slice. The definite length form is always used.
func Append(dst []byte, v Value) []byte {
	dst = AppendIdentifier(dst, v.Identifier)
	dst = AppendLength(dst, len(v.Contents))
	return append(dst, v.Contents...)
}
