// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"iter"
	"reflect"
	"strconv"
	"strings"

	"codello.dev/x690"
)

// FieldParameters is the parsed representation of the tag string from a
// struct field.
type FieldParameters struct {
	Ignore   bool       // true iff this field should be ignored
	HasTag   bool       // true iff Class and Tag are set
	Class    x690.Class // the IMPLICIT or EXPLICIT tag class
	Tag      uint64     // the IMPLICIT or EXPLICIT tag number
	Optional bool       // true iff the field is OPTIONAL
	Explicit bool       // true iff an EXPLICIT tag is in use
	OmitZero bool       // true iff this should be omitted if zero when marshaling
	Set      bool       // true iff a struct or slice uses the SET encoding
}

// ParseFieldParameters will parse a given tag string into a FieldParameters
// structure, ignoring unknown parts of the string. The string must be
// formatted according to the package documentation of the der package.
func ParseFieldParameters(str string) (ret FieldParameters) {
	hasClass := false
	for part := range strings.SplitSeq(str, ",") {
		switch {
		case part == "-":
			ret.Ignore = true
		case part == "optional":
			ret.Optional = true
		case part == "explicit":
			ret.Explicit = true
		case part == "set":
			ret.Set = true
		case part == "omitzero":
			ret.OmitZero = true
		case strings.HasPrefix(part, "tag:"):
			i, err := strconv.ParseUint(part[4:], 10, 64)
			if err == nil {
				if !hasClass {
					ret.Class = x690.ClassContextSpecific
				}
				ret.HasTag = true
				ret.Tag = i
			}
		case part == "application":
			ret.Class = x690.ClassApplication
			hasClass = true
		case part == "private":
			ret.Class = x690.ClassPrivate
			hasClass = true
		case part == "universal":
			ret.Class = x690.ClassUniversal
			hasClass = true
		}
	}
	return ret
}

// Override returns the identifier selected by the tag string, if any. The
// constructed flag is carried over from the natural encoding for IMPLICIT
// tags; EXPLICIT tags always use the constructed encoding.
func (p FieldParameters) Override(constructed bool) (x690.Identifier, bool) {
	if !p.HasTag {
		return x690.Identifier{}, false
	}
	return x690.Identifier{
		Class:       p.Class,
		Constructed: p.Explicit || constructed,
		Number:      p.Tag,
	}, true
}

// StructFields returns a sequence that iterates over the fields of the struct
// identified by v. Struct fields with an `asn1:"-"` tag are ignored, as are
// non-exported struct fields. Fields of embedded structs are returned as if
// they were fields of the containing struct.
func StructFields(v reflect.Value) iter.Seq2[reflect.Value, FieldParameters] {
	return func(yield func(reflect.Value, FieldParameters) bool) {
		t := v.Type()
		for i := range t.NumField() {
			field := t.Field(i)
			params := ParseFieldParameters(field.Tag.Get("asn1"))
			if params.Ignore || !field.IsExported() {
				continue
			}
			if field.Anonymous && !params.HasTag && field.Type.Kind() == reflect.Struct {
				for vv, params := range StructFields(v.Field(i)) {
					if !yield(vv, params) {
						return
					}
				}
				continue
			}
			if !yield(v.Field(i), params) {
				return
			}
		}
	}
}
