// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"iter"
	"reflect"

	"codello.dev/x690"
	"codello.dev/x690/internal"
	"codello.dev/x690/tlv"
)

// Choice marks a struct type as an ASN.1 CHOICE. A CHOICE struct embeds
// Choice and declares one pointer field per variant:
//
//	type DirectoryString struct {
//		der.Choice
//		Printable *x690.PrintableString
//		UTF8      *x690.UTF8String `asn1:"tag:5"`
//	}
//
// Variants without a tag option are assigned context-specific tags in order
// of declaration, starting at the tag number following the previous variant.
// Exactly one variant must be non-nil when encoding; the tag of the selected
// variant replaces the natural tag of its type. A CHOICE has no identifier of
// its own, so a tag on a CHOICE field must use the explicit option.
type Choice struct{}

var choiceType = reflect.TypeFor[Choice]()

// isChoice reports whether t is a struct type with an embedded [Choice]
// field.
func isChoice(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		if f := t.Field(i); f.Anonymous && f.Type == choiceType {
			return true
		}
	}
	return false
}

// choiceVariants returns a sequence over the variant fields of the CHOICE
// struct v together with the tag parameters selecting each variant. Untagged
// variants receive consecutive context-specific tag numbers.
func choiceVariants(v reflect.Value) iter.Seq2[reflect.Value, internal.FieldParameters] {
	return func(yield func(reflect.Value, internal.FieldParameters) bool) {
		t := v.Type()
		next := uint64(0)
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() || field.Anonymous && field.Type == choiceType {
				continue
			}
			params := internal.ParseFieldParameters(field.Tag.Get("asn1"))
			if params.Ignore {
				continue
			}
			if !params.HasTag {
				params.HasTag = true
				params.Class = x690.ClassContextSpecific
				params.Tag = next
			}
			next = params.Tag + 1
			if !yield(v.Field(i), params) {
				return
			}
		}
	}
}

func encodeChoice(v reflect.Value) (tlv.Value, error) {
	var selected reflect.Value
	var selectedParams internal.FieldParameters
	n := 0
	for field, params := range choiceVariants(v) {
		if field.Kind() != reflect.Pointer {
			return tlv.Value{}, &StructuralError{v.Type(), errVariantKind}
		}
		if !field.IsNil() {
			n++
			selected, selectedParams = field, params
		}
	}
	if n != 1 {
		return tlv.Value{}, &StructuralError{v.Type(), errVariantCount}
	}
	val, _, err := encodeValue(selected, selectedParams)
	return val, err
}

func decodeChoice(val tlv.Value, v reflect.Value, depth int) error {
	var selected reflect.Value
	var selectedParams internal.FieldParameters
	for field, params := range choiceVariants(v) {
		if field.Kind() != reflect.Pointer {
			return &StructuralError{v.Type(), errVariantKind}
		}
		// deselect the other variants when decoding into a reused value
		field.SetZero()
		if !selected.IsValid() && val.Identifier.Class == params.Class && val.Identifier.Number == params.Tag {
			selected, selectedParams = field, params
		}
	}
	if !selected.IsValid() {
		return &NoVariantError{v.Type(), val.Identifier}
	}
	return decodeValue(val, selected, selectedParams, depth+1)
}

// choiceMatch reports whether the identifier id selects any variant of the
// CHOICE type t.
func choiceMatch(t reflect.Type, id x690.Identifier) bool {
	for _, params := range choiceVariants(reflect.New(t).Elem()) {
		if id.Class == params.Class && id.Number == params.Tag {
			return true
		}
	}
	return false
}
