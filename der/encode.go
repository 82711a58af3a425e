// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"cmp"
	"math/big"
	"reflect"
	"slices"

	"codello.dev/x690"
	"codello.dev/x690/internal"
	"codello.dev/x690/tlv"
)

// Marshal returns the DER encoding of val.
//
// See the package documentation for details on how Go types are encoded.
func Marshal(val any) ([]byte, error) {
	return AppendValue(nil, val, "")
}

// MarshalWithParams works like [Marshal] but applies the given parameter
// string to the top-level value. The parameter string uses the same format as
// the `asn1` struct tag.
func MarshalWithParams(val any, params string) ([]byte, error) {
	return AppendValue(nil, val, params)
}

// AppendValue appends the DER encoding of val to dst and returns the extended
// slice. The parameter string uses the same format as the `asn1` struct tag.
func AppendValue(dst []byte, val any, params string) ([]byte, error) {
	p := internal.ParseFieldParameters(params)
	// a top-level value cannot be absent
	p.Optional, p.OmitZero = false, false
	v, _, err := encodeValue(reflect.ValueOf(val), p)
	if err != nil {
		return dst, err
	}
	return tlv.Append(dst, v), nil
}

// encodeValue encodes v into a single data value, applying the tag override
// from params. The second return value is false if the value is absent, that
// is a zero value with the omitzero option.
func encodeValue(v reflect.Value, params internal.FieldParameters) (tlv.Value, bool, error) {
	if !v.IsValid() {
		return tlv.Value{}, false, &UnsupportedTypeError{}
	}
	if params.OmitZero && v.IsZero() {
		return tlv.Value{}, false, nil
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			if params.Optional || params.OmitZero {
				return tlv.Value{}, false, nil
			}
			return tlv.Value{}, false, &StructuralError{v.Type(), errNilValue}
		}
		if v.Type().Implements(derEncoderType) {
			break
		}
		v = v.Elem()
	}
	val, err := encodeNatural(v, params)
	if err != nil {
		return tlv.Value{}, false, err
	}
	if override, ok := params.Override(val.Identifier.Constructed); ok {
		if params.Explicit {
			val = tlv.Value{Identifier: override, Contents: tlv.Append(nil, val)}
		} else {
			val.Identifier = override
		}
	}
	return val, true, nil
}

var derEncoderType = reflect.TypeFor[DerEncoder]()

// encodeNatural encodes v using the natural identifier of its type.
func encodeNatural(v reflect.Value, params internal.FieldParameters) (tlv.Value, error) {
	if enc, ok := v.Interface().(DerEncoder); ok {
		return enc.DerEncode()
	}
	if v.CanAddr() {
		if enc, ok := v.Addr().Interface().(DerEncoder); ok {
			return enc.DerEncode()
		}
	}

	switch x := v.Interface().(type) {
	case RawValue:
		return tlv.Value{Identifier: x.Identifier, Contents: x.Bytes}, nil
	case Sequence:
		// DerEncode uses a pointer receiver, catch by-value sequences here
		return x.DerEncode()
	case big.Int:
		return tlv.Value{Identifier: x690.IdentifierInteger, Contents: appendBigInt(nil, &x)}, nil
	case x690.BitString:
		contents, err := appendBitString(nil, x)
		return tlv.Value{Identifier: x690.IdentifierBitString, Contents: contents}, err
	case x690.Null:
		return tlv.Value{Identifier: x690.IdentifierNull}, nil
	case x690.ObjectIdentifier:
		contents, err := appendOID(nil, x)
		return tlv.Value{Identifier: x690.IdentifierOID, Contents: contents}, err
	case x690.RelativeOID:
		return tlv.Value{Identifier: x690.IdentifierRelativeOID, Contents: appendRelativeOID(nil, x)}, nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr, string:
		// the predeclared Go types use their universal counterparts, handled
		// by kind below
	case x690.UTF8String:
		return encodeString(string(x), x690.IdentifierUTF8String)
	case x690.NumericString:
		return encodeString(string(x), x690.IdentifierNumericString)
	case x690.PrintableString:
		return encodeString(string(x), x690.IdentifierPrintableString)
	case x690.IA5String:
		return encodeString(string(x), x690.IdentifierIA5String)
	case x690.VisibleString:
		return encodeString(string(x), x690.IdentifierVisibleString)
	}

	switch v.Kind() {
	case reflect.Bool:
		return tlv.Value{Identifier: x690.IdentifierBoolean, Contents: appendBool(nil, v.Bool())}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return tlv.Value{Identifier: integerIdentifier(v.Type()), Contents: appendInt(nil, v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return tlv.Value{Identifier: integerIdentifier(v.Type()), Contents: appendUint(nil, v.Uint())}, nil
	case reflect.String:
		return encodeString(v.String(), x690.IdentifierUTF8String)
	case reflect.Struct:
		if isChoice(v.Type()) {
			return encodeChoice(v)
		}
		return encodeStruct(v, params)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return tlv.Value{Identifier: x690.IdentifierOctetString, Contents: v.Bytes()}, nil
		}
		return encodeSequenceOf(v, params)
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			contents := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(contents), v)
			return tlv.Value{Identifier: x690.IdentifierOctetString, Contents: contents}, nil
		}
		return encodeSequenceOf(v, params)
	}
	return tlv.Value{}, &UnsupportedTypeError{v.Type()}
}

// integerIdentifier returns [x690.IdentifierInteger] for the predeclared Go
// integer types and [x690.IdentifierEnumerated] for named integer types.
func integerIdentifier(t reflect.Type) x690.Identifier {
	if t.PkgPath() != "" {
		return x690.IdentifierEnumerated
	}
	return x690.IdentifierInteger
}

func encodeString(s string, id x690.Identifier) (tlv.Value, error) {
	if !stringValid(id.Number, s) {
		return tlv.Value{}, &EncodingError{id, errInvalidString}
	}
	return tlv.Value{Identifier: id, Contents: []byte(s)}, nil
}

func encodeStruct(v reflect.Value, params internal.FieldParameters) (tlv.Value, error) {
	id := x690.IdentifierSequence
	children := make([]tlv.Value, 0, v.NumField())
	for field, fp := range internal.StructFields(v) {
		child, ok, err := encodeValue(field, fp)
		if err != nil {
			return tlv.Value{}, err
		}
		if ok {
			children = append(children, child)
		}
	}
	if params.Set {
		id = x690.IdentifierSet
		// DER requires the values of a SET in ascending tag order (X.690, 9.3)
		slices.SortStableFunc(children, compareTags)
	}
	var contents []byte
	for _, child := range children {
		contents = tlv.Append(contents, child)
	}
	return tlv.Value{Identifier: id, Contents: contents}, nil
}

func compareTags(a, b tlv.Value) int {
	if c := cmp.Compare(a.Identifier.Class, b.Identifier.Class); c != 0 {
		return c
	}
	return cmp.Compare(a.Identifier.Number, b.Identifier.Number)
}

func encodeSequenceOf(v reflect.Value, params internal.FieldParameters) (tlv.Value, error) {
	if params.Set {
		// DER requires the values of a SET OF in ascending order of their
		// encodings (X.690, 10.3)
		encodings := make([][]byte, 0, v.Len())
		for i := range v.Len() {
			child, _, err := encodeValue(v.Index(i), internal.FieldParameters{})
			if err != nil {
				return tlv.Value{}, err
			}
			encodings = append(encodings, tlv.Append(nil, child))
		}
		slices.SortFunc(encodings, bytes.Compare)
		return tlv.Value{Identifier: x690.IdentifierSet, Contents: bytes.Join(encodings, nil)}, nil
	}
	var contents []byte
	for i := range v.Len() {
		child, _, err := encodeValue(v.Index(i), internal.FieldParameters{})
		if err != nil {
			return tlv.Value{}, err
		}
		contents = tlv.Append(contents, child)
	}
	return tlv.Value{Identifier: x690.IdentifierSequence, Contents: contents}, nil
}

// A Sequence incrementally builds a constructed data value from individually
// encoded children. The zero value is an empty SEQUENCE. A *Sequence can be
// passed to [Marshal] or appended to another Sequence.
type Sequence struct {
	// Identifier is the identifier of the constructed value. A zero
	// Identifier defaults to [x690.IdentifierSequence].
	Identifier x690.Identifier

	children []tlv.Value
}

// Append encodes val and adds it to the end of s.
func (s *Sequence) Append(val any) error {
	return s.AppendWithParams(val, "")
}

// AppendWithParams works like [Sequence.Append] but applies the given
// parameter string to val. A zero value with the omitzero option is not
// added.
func (s *Sequence) AppendWithParams(val any, params string) error {
	v, ok, err := encodeValue(reflect.ValueOf(val), internal.ParseFieldParameters(params))
	if err != nil {
		return err
	}
	if ok {
		s.children = append(s.children, v)
	}
	return nil
}

// Len returns the number of values added to s.
func (s *Sequence) Len() int {
	return len(s.children)
}

// DerEncode implements the [DerEncoder] interface. If the identifier of s is
// the SET identifier the children are sorted as required by DER.
func (s *Sequence) DerEncode() (tlv.Value, error) {
	id := s.Identifier
	if id == (x690.Identifier{}) {
		id = x690.IdentifierSequence
	}
	children := s.children
	if id.Tag() == x690.IdentifierSet.Tag() {
		children = slices.Clone(children)
		slices.SortStableFunc(children, compareTags)
	}
	var contents []byte
	for _, child := range children {
		contents = tlv.Append(contents, child)
	}
	return tlv.Value{Identifier: id, Contents: contents}, nil
}
