// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x690 defines the abstract data model shared by the ASN.1 encoding
// rules specified in [Rec. ITU-T X.690]. This package only defines the
// identifier model (tag classes and numbers) and Go types for some of the
// universal ASN.1 types. Encoding and decoding is implemented in the
// subpackages of this package:
//
//   - [codello.dev/x690/tlv] implements the syntactic tag-length-value layer
//     used by BER, CER, and DER.
//   - [codello.dev/x690/der] implements the Distinguished Encoding Rules on
//     top of the tlv package. Decoding additionally accepts the more
//     permissive BER variants.
//   - [codello.dev/x690/per] implements a small subset of the Packed Encoding
//     Rules, namely the whole-number encodings.
//
// # Mapping of ASN.1 Types to Go Types
//
// Many ASN.1 types have corresponding types with the same name defined in this
// package. Additionally, the following Go types translate into their ASN.1
// counterparts:
//
//   - A Go bool corresponds to the ASN.1 BOOLEAN type.
//   - All Go integer types and [math/big.Int] correspond to the ASN.1 INTEGER
//     type. The supported size is limited by the Go type.
//   - Named Go types with an underlying integer type correspond to the ASN.1
//     ENUMERATED type.
//   - The Go string type corresponds to the ASN.1 UTF8String type. A string
//     can be decoded from any ASN.1 string type defined in this package.
//   - A byte slice or byte array corresponds to an ASN.1 OCTET STRING.
//   - Go slices and arrays correspond to the ASN.1 SEQUENCE OF type.
//   - Go structs correspond to the ASN.1 SEQUENCE type. The struct fields
//     define the contents of the sequence, in order of definition.
//
// See the package documentation of [codello.dev/x690/der] for the struct tags
// understood during encoding and decoding.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package x690

import (
	"strconv"
	"strings"
)

// Class holds the class part of an ASN.1 tag. The class acts as a namespace
// for the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// An Identifier corresponds to the identifier octets of a data value encoding.
// It combines the tag (class and number) of a value with the flag indicating
// whether the primitive or constructed encoding is used. For details see
// Section 8.1.2 of Rec. ITU-T X.690.
//
// Tag numbers are limited to the uint64 range. The tlv package reports an
// error when it encounters an encoded tag number exceeding that range, it
// never truncates.
type Identifier struct {
	Class       Class
	Constructed bool
	Number      uint64
}

// ContextSpecific returns the context-specific Identifier with tag number n
// using the primitive encoding. This is the conventional form of CHOICE
// alternatives and tagged SEQUENCE fields.
func ContextSpecific(n uint64) Identifier {
	return Identifier{Class: ClassContextSpecific, Number: n}
}

// Tag returns the tag of id, that is id without the constructed flag. Two
// identifiers have the same type identity iff their tags are equal.
func (id Identifier) Tag() Identifier {
	id.Constructed = false
	return id
}

// String returns a string representation of id in a format similar to the one
// used in ASN.1 notation. The tag number is enclosed by square brackets and
// prefixed with the class used. To avoid ambiguity the UNIVERSAL word is used
// for universal tags, although this is not valid ASN.1 syntax.
func (id Identifier) String() string {
	var s strings.Builder
	s.WriteByte('[')
	if id.Class != ClassContextSpecific {
		s.WriteString(strings.ToUpper(id.Class.String()))
		s.WriteByte(' ')
	}
	s.WriteString(strconv.FormatUint(id.Number, 10))
	s.WriteByte(']')
	if id.Constructed {
		s.WriteString("/c")
	}
	return s.String()
}

// TagReserved is a reserved tag number in the [ClassUniversal] namespace to be
// used by encoding rules. BER uses it for the end-of-contents marker that
// terminates indefinite-length encodings. This assignment is defined in
// Rec. ITU-T X.680, Section 8, Table 1.
const TagReserved = 0

// These are the ASN.1 tag numbers defined in the [ClassUniversal] namespace
// that are recognized by this module. The assignments are defined in
// Rec. ITU-T X.680, Section 8, Table 1.
const (
	TagBoolean         uint64 = 1
	TagInteger         uint64 = 2
	TagBitString       uint64 = 3
	TagOctetString     uint64 = 4
	TagNull            uint64 = 5
	TagOID             uint64 = 6
	TagEnumerated      uint64 = 10
	TagUTF8String      uint64 = 12
	TagRelativeOID     uint64 = 13
	TagSequence        uint64 = 16
	TagSet             uint64 = 17
	TagNumericString   uint64 = 18
	TagPrintableString uint64 = 19
	TagIA5String       uint64 = 22
	TagVisibleString   uint64 = 26
)

// Universal returns the Identifier for the universal tag number n using the
// primitive encoding.
func Universal(n uint64) Identifier {
	return Identifier{Class: ClassUniversal, Number: n}
}

// Identifiers of the universal ASN.1 types implemented by this module. The
// SEQUENCE and SET types always use the constructed encoding.
var (
	IdentifierBoolean         = Universal(TagBoolean)
	IdentifierInteger         = Universal(TagInteger)
	IdentifierBitString       = Universal(TagBitString)
	IdentifierOctetString     = Universal(TagOctetString)
	IdentifierNull            = Universal(TagNull)
	IdentifierOID             = Universal(TagOID)
	IdentifierEnumerated      = Universal(TagEnumerated)
	IdentifierUTF8String      = Universal(TagUTF8String)
	IdentifierRelativeOID     = Universal(TagRelativeOID)
	IdentifierSequence        = Identifier{Class: ClassUniversal, Constructed: true, Number: TagSequence}
	IdentifierSet             = Identifier{Class: ClassUniversal, Constructed: true, Number: TagSet}
	IdentifierNumericString   = Universal(TagNumericString)
	IdentifierPrintableString = Universal(TagPrintableString)
	IdentifierIA5String       = Universal(TagIA5String)
	IdentifierVisibleString   = Universal(TagVisibleString)
)
