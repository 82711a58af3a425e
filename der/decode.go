// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"math/big"
	"reflect"

	"codello.dev/x690"
	"codello.dev/x690/internal"
	"codello.dev/x690/tlv"
)

// Unmarshal decodes the DER or BER encoded data in b into val, which must be
// a non-nil pointer. The input must consist of exactly one data value
// encoding; trailing data is an error. See [Decode] for decoding from a
// buffer holding multiple values.
//
// See the package documentation for details on how values are decoded.
func Unmarshal(b []byte, val any) error {
	return UnmarshalWithParams(b, val, "")
}

// UnmarshalWithParams works like [Unmarshal] but applies the given parameter
// string to the top-level value. The parameter string uses the same format as
// the `asn1` struct tag.
func UnmarshalWithParams(b []byte, val any, params string) error {
	rest, err := DecodeWithParams(b, val, params)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return &StructuralError{reflect.TypeOf(val), errTrailingData}
	}
	return nil
}

// Decode decodes the first data value encoding in b into val, which must be a
// non-nil pointer. It returns the remaining bytes following the encoding.
func Decode(b []byte, val any) (rest []byte, err error) {
	return DecodeWithParams(b, val, "")
}

// DecodeWithParams works like [Decode] but applies the given parameter string
// to the decoded value.
func DecodeWithParams(b []byte, val any, params string) (rest []byte, err error) {
	v := reflect.ValueOf(val)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return b, &InvalidDecodeError{reflect.TypeOf(val)}
	}
	tv, rest, err := tlv.Parse(b)
	if err != nil {
		return b, err
	}
	p := internal.ParseFieldParameters(params)
	p.Optional, p.OmitZero = false, false
	if err := decodeValue(tv, v.Elem(), p, 0); err != nil {
		return b, err
	}
	return rest, nil
}

var derDecoderType = reflect.TypeFor[DerDecoder]()

// decodeValue decodes the data value val into v, applying the tag override
// from params. depth counts the nesting level of the decoding to bound
// recursion on adversarial input.
func decodeValue(val tlv.Value, v reflect.Value, params internal.FieldParameters, depth int) error {
	if depth >= tlv.MaxNestingDepth {
		return tlv.ErrDepth
	}
	if params.HasTag && params.Explicit {
		expected := x690.Identifier{Class: params.Class, Constructed: true, Number: params.Tag}
		if val.Identifier != expected {
			return &IncorrectTypeError{expected, val.Identifier}
		}
		inner, rest, err := tlv.Parse(val.Contents)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return &EncodingError{val.Identifier, errExplicitContents}
		}
		params.HasTag, params.Explicit = false, false
		return decodeValue(inner, v, params, depth+1)
	}

	// follow pointers, allocating as needed, with custom decoders taking
	// precedence
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		if v.Type().Implements(derDecoderType) {
			if err := checkImplicitTag(val, params); err != nil {
				return err
			}
			return v.Interface().(DerDecoder).DerDecode(val)
		}
		v = v.Elem()
	}
	if !v.CanSet() {
		return &InvalidDecodeError{v.Type()}
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(derDecoderType) {
		if err := checkImplicitTag(val, params); err != nil {
			return err
		}
		return v.Addr().Interface().(DerDecoder).DerDecode(val)
	}
	if v.Kind() == reflect.Interface && v.NumMethod() == 0 {
		v.Set(reflect.ValueOf(RawValue{val.Identifier, bytes.Clone(val.Contents)}))
		return nil
	}
	if isChoice(v.Type()) {
		if params.HasTag {
			return &StructuralError{v.Type(), errImplicitChoice}
		}
		return decodeChoice(val, v, depth)
	}

	if params.HasTag {
		if err := checkImplicitTag(val, params); err != nil {
			return err
		}
		// restore the natural identifier so that the decoders below can
		// verify the constructed flag
		if natural, ok := naturalIdentifier(v.Type(), params.Set); ok {
			val.Identifier = x690.Identifier{Class: natural.Class, Constructed: val.Identifier.Constructed, Number: natural.Number}
		}
	}
	return decodeNatural(val, v, params, depth)
}

// checkImplicitTag verifies an implicit tag override from a tag string against
// the identifier of val. Custom decoders receive the data value with its wire
// identifier after the override has been verified.
func checkImplicitTag(val tlv.Value, params internal.FieldParameters) error {
	if !params.HasTag {
		return nil
	}
	if val.Identifier.Class != params.Class || val.Identifier.Number != params.Tag {
		expected := x690.Identifier{Class: params.Class, Constructed: val.Identifier.Constructed, Number: params.Tag}
		return &IncorrectTypeError{expected, val.Identifier}
	}
	return nil
}

// decodeNatural decodes the data value val into v, matching the natural
// identifier of the type of v.
func decodeNatural(val tlv.Value, v reflect.Value, params internal.FieldParameters, depth int) error {
	switch x := v.Addr().Interface().(type) {
	case *RawValue:
		*x = RawValue{val.Identifier, bytes.Clone(val.Contents)}
		return nil
	case *big.Int:
		if err := checkIdentifier(val, x690.IdentifierInteger); err != nil {
			return err
		}
		n, err := decodeBigInt(val)
		if err != nil {
			return err
		}
		x.Set(n)
		return nil
	case *x690.BitString:
		if err := checkIdentifier(val, x690.IdentifierBitString); err != nil {
			return err
		}
		s, err := decodeBitString(val)
		if err != nil {
			return err
		}
		*x = s
		return nil
	case *x690.Null:
		if err := checkIdentifier(val, x690.IdentifierNull); err != nil {
			return err
		}
		if len(val.Contents) != 0 {
			return &IncorrectLengthError{val.Identifier, len(val.Contents)}
		}
		return nil
	case *x690.ObjectIdentifier:
		if err := checkIdentifier(val, x690.IdentifierOID); err != nil {
			return err
		}
		oid, err := decodeOID(val)
		if err != nil {
			return err
		}
		*x = oid
		return nil
	case *x690.RelativeOID:
		if err := checkIdentifier(val, x690.IdentifierRelativeOID); err != nil {
			return err
		}
		oid, err := decodeRelativeOID(val)
		if err != nil {
			return err
		}
		*x = oid
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		if err := checkIdentifier(val, x690.IdentifierBoolean); err != nil {
			return err
		}
		b, err := decodeBool(val)
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if err := checkIdentifier(val, integerIdentifier(v.Type())); err != nil {
			return err
		}
		i, err := decodeInt64(val)
		if err == errIntegerOverflow {
			return &OverflowError{val.Identifier, v.Type()}
		} else if err != nil {
			return err
		}
		if v.OverflowInt(i) {
			return &OverflowError{val.Identifier, v.Type()}
		}
		v.SetInt(i)
		return checkEnum(val, v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if err := checkIdentifier(val, integerIdentifier(v.Type())); err != nil {
			return err
		}
		u, err := decodeUint64(val)
		if err == errIntegerOverflow {
			return &OverflowError{val.Identifier, v.Type()}
		} else if err != nil {
			return err
		}
		if v.OverflowUint(u) {
			return &OverflowError{val.Identifier, v.Type()}
		}
		v.SetUint(u)
		return checkEnum(val, v)
	case reflect.String:
		return decodeString(val, v)
	case reflect.Struct:
		if params.Set {
			if err := checkIdentifier(val, x690.IdentifierSet); err != nil {
				return err
			}
			return decodeSetStruct(val, v, depth)
		}
		if err := checkIdentifier(val, x690.IdentifierSequence); err != nil {
			return err
		}
		return decodeStruct(val, v, depth)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if err := checkIdentifier(val, x690.IdentifierOctetString); err != nil {
				return err
			}
			v.SetBytes(bytes.Clone(val.Contents))
			return nil
		}
		if err := checkIdentifier(val, sequenceIdentifier(params)); err != nil {
			return err
		}
		return decodeSlice(val, v, depth)
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if err := checkIdentifier(val, x690.IdentifierOctetString); err != nil {
				return err
			}
			if len(val.Contents) != v.Len() {
				return &StructuralError{v.Type(), errNotEnoughValues}
			}
			reflect.Copy(v, reflect.ValueOf(val.Contents))
			return nil
		}
		if err := checkIdentifier(val, sequenceIdentifier(params)); err != nil {
			return err
		}
		return decodeArray(val, v, depth)
	}
	return &UnsupportedTypeError{v.Type()}
}

// checkEnum consults the optional IsValid method of a named integer type and
// rejects decoded values that are not part of the enumeration.
func checkEnum(val tlv.Value, v reflect.Value) error {
	if e, ok := v.Interface().(interface{ IsValid() bool }); ok && !e.IsValid() {
		return &NoVariantError{v.Type(), val.Identifier}
	}
	return nil
}

// checkIdentifier verifies that the identifier of val matches expected
// exactly, including the constructed flag.
func checkIdentifier(val tlv.Value, expected x690.Identifier) error {
	if val.Identifier != expected {
		return &IncorrectTypeError{expected, val.Identifier}
	}
	return nil
}

func sequenceIdentifier(params internal.FieldParameters) x690.Identifier {
	if params.Set {
		return x690.IdentifierSet
	}
	return x690.IdentifierSequence
}

// stringTags holds the universal tag numbers that can decode into a plain Go
// string.
var stringTags = map[uint64]bool{
	x690.TagUTF8String:      true,
	x690.TagNumericString:   true,
	x690.TagPrintableString: true,
	x690.TagIA5String:       true,
	x690.TagVisibleString:   true,
}

func decodeString(val tlv.Value, v reflect.Value) error {
	expected, _ := naturalIdentifier(v.Type(), false)
	if expected == x690.IdentifierUTF8String && v.Type() != reflect.TypeFor[x690.UTF8String]() {
		// a plain Go string accepts any of the supported string types
		if val.Identifier.Class != x690.ClassUniversal || val.Identifier.Constructed || !stringTags[val.Identifier.Number] {
			return &IncorrectTypeError{x690.IdentifierUTF8String, val.Identifier}
		}
	} else if err := checkIdentifier(val, expected); err != nil {
		return err
	}
	s := string(val.Contents)
	if !stringValid(val.Identifier.Number, s) {
		return &EncodingError{val.Identifier, errInvalidString}
	}
	v.SetString(s)
	return nil
}

func decodeStruct(val tlv.Value, v reflect.Value, depth int) error {
	vals := Values{rest: val.Contents}
	for field, fp := range internal.StructFields(v) {
		if !vals.More() {
			if fp.Optional || fp.OmitZero {
				field.SetZero()
				continue
			}
			return &StructuralError{v.Type(), errNotEnoughValues}
		}
		child, err := vals.Peek()
		if err != nil {
			return err
		}
		if (fp.Optional || fp.OmitZero) && !fieldMatches(child.Identifier, field.Type(), fp) {
			field.SetZero()
			continue
		}
		if err := vals.Skip(); err != nil {
			return err
		}
		if err := decodeValue(child, field, fp, depth+1); err != nil {
			return err
		}
	}
	if vals.More() {
		return &StructuralError{v.Type(), errTooManyValues}
	}
	return nil
}

// decodeSetStruct decodes a SET into a struct. BER permits the values of a
// SET in any order, so every field searches the full list of values.
func decodeSetStruct(val tlv.Value, v reflect.Value, depth int) error {
	var children []tlv.Value
	vals := Values{rest: val.Contents}
	for vals.More() {
		child, err := vals.Next()
		if err != nil {
			return err
		}
		children = append(children, child)
	}
	used := make([]bool, len(children))
	for field, fp := range internal.StructFields(v) {
		found := false
		for i, child := range children {
			if used[i] || !fieldMatches(child.Identifier, field.Type(), fp) {
				continue
			}
			used[i] = true
			if err := decodeValue(child, field, fp, depth+1); err != nil {
				return err
			}
			found = true
			break
		}
		if !found {
			if fp.Optional || fp.OmitZero {
				field.SetZero()
				continue
			}
			return &StructuralError{v.Type(), errNotEnoughValues}
		}
	}
	for _, u := range used {
		if !u {
			return &StructuralError{v.Type(), errTooManyValues}
		}
	}
	return nil
}

// fieldMatches reports whether a data value with the given identifier can
// belong to a field of type t. This drives the presence decision for OPTIONAL
// fields and the variant selection for CHOICE types.
func fieldMatches(id x690.Identifier, t reflect.Type, fp internal.FieldParameters) bool {
	if fp.HasTag {
		return id.Class == fp.Class && id.Number == fp.Tag
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if m, ok := matcherFor(t); ok {
		return m.DerMatch(id)
	}
	if isChoice(t) {
		return choiceMatch(t, id)
	}
	if t.Kind() == reflect.Interface {
		return true
	}
	if t.Kind() == reflect.String && t != reflect.TypeFor[x690.UTF8String]() {
		if natural, _ := naturalIdentifier(t, false); natural == x690.IdentifierUTF8String {
			return id.Class == x690.ClassUniversal && stringTags[id.Number]
		}
	}
	natural, ok := naturalIdentifier(t, fp.Set)
	if !ok {
		// types without a natural identifier accept anything, a mismatch
		// surfaces during decoding
		return true
	}
	return id.Tag() == natural.Tag()
}

var derMatcherType = reflect.TypeFor[DerMatcher]()

func matcherFor(t reflect.Type) (DerMatcher, bool) {
	if t.Implements(derMatcherType) {
		return reflect.Zero(t).Interface().(DerMatcher), true
	}
	if reflect.PointerTo(t).Implements(derMatcherType) {
		return reflect.New(t).Interface().(DerMatcher), true
	}
	return nil, false
}

// naturalIdentifier returns the identifier a value of type t naturally
// encodes to. The second return value is false for types without a fixed
// identifier such as [RawValue] or CHOICE types.
func naturalIdentifier(t reflect.Type, set bool) (x690.Identifier, bool) {
	switch t {
	case reflect.TypeFor[big.Int]():
		return x690.IdentifierInteger, true
	case reflect.TypeFor[x690.BitString]():
		return x690.IdentifierBitString, true
	case reflect.TypeFor[x690.Null]():
		return x690.IdentifierNull, true
	case reflect.TypeFor[x690.ObjectIdentifier]():
		return x690.IdentifierOID, true
	case reflect.TypeFor[x690.RelativeOID]():
		return x690.IdentifierRelativeOID, true
	case reflect.TypeFor[x690.NumericString]():
		return x690.IdentifierNumericString, true
	case reflect.TypeFor[x690.PrintableString]():
		return x690.IdentifierPrintableString, true
	case reflect.TypeFor[x690.IA5String]():
		return x690.IdentifierIA5String, true
	case reflect.TypeFor[x690.VisibleString]():
		return x690.IdentifierVisibleString, true
	case reflect.TypeFor[RawValue]():
		return x690.Identifier{}, false
	}
	switch t.Kind() {
	case reflect.Bool:
		return x690.IdentifierBoolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return integerIdentifier(t), true
	case reflect.String:
		return x690.IdentifierUTF8String, true
	case reflect.Struct:
		if isChoice(t) {
			return x690.Identifier{}, false
		}
		if set {
			return x690.IdentifierSet, true
		}
		return x690.IdentifierSequence, true
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return x690.IdentifierOctetString, true
		}
		if set {
			return x690.IdentifierSet, true
		}
		return x690.IdentifierSequence, true
	}
	return x690.Identifier{}, false
}

func decodeSlice(val tlv.Value, v reflect.Value, depth int) error {
	elems := reflect.MakeSlice(v.Type(), 0, 4)
	vals := Values{rest: val.Contents}
	for vals.More() {
		child, err := vals.Next()
		if err != nil {
			return err
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := decodeValue(child, elem, internal.FieldParameters{}, depth+1); err != nil {
			return err
		}
		elems = reflect.Append(elems, elem)
	}
	v.Set(elems)
	return nil
}

func decodeArray(val tlv.Value, v reflect.Value, depth int) error {
	i := 0
	vals := Values{rest: val.Contents}
	for vals.More() {
		if i >= v.Len() {
			return &StructuralError{v.Type(), errTooManyValues}
		}
		child, err := vals.Next()
		if err != nil {
			return err
		}
		if err := decodeValue(child, v.Index(i), internal.FieldParameters{}, depth+1); err != nil {
			return err
		}
		i++
	}
	if i != v.Len() {
		return &StructuralError{v.Type(), errNotEnoughValues}
	}
	return nil
}

// Values is a cursor over a buffer of consecutive data value encodings, such
// as the contents octets of a constructed value. It allows collaborating
// decoders to consume a constructed value one child at a time.
type Values struct {
	rest []byte
}

// NewValues returns a cursor over the data value encodings in b.
func NewValues(b []byte) *Values {
	return &Values{rest: b}
}

// More reports whether there are remaining bytes in the buffer.
func (vs *Values) More() bool {
	return len(vs.rest) > 0
}

// Next frames the next data value and advances the cursor past it.
func (vs *Values) Next() (tlv.Value, error) {
	v, rest, err := tlv.Parse(vs.rest)
	if err != nil {
		return tlv.Value{}, err
	}
	vs.rest = rest
	return v, nil
}

// Peek frames the next data value without advancing the cursor.
func (vs *Values) Peek() (tlv.Value, error) {
	v, _, err := tlv.Parse(vs.rest)
	return v, err
}

// Skip advances the cursor past the next data value.
func (vs *Values) Skip() error {
	_, err := vs.Next()
	return err
}
