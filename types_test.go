// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x690

import (
	"bytes"
	"testing"
)

func TestBitString(t *testing.T) {
	s := BitString{Bytes: []byte{0x6E, 0x5D, 0xC0}, BitLength: 18}
	if !s.IsValid() {
		t.Fatalf("IsValid() = false, want true")
	}
	if s.Len() != 18 {
		t.Errorf("Len() = %d, want 18", s.Len())
	}
	bits := []int{0, 1, 1, 0, 1, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 1, 1, 1}
	for i, want := range bits {
		if got := s.At(i); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestBitString_IsValid(t *testing.T) {
	tests := map[string]struct {
		s    BitString
		want bool
	}{
		"Empty":        {BitString{}, true},
		"Exact":        {BitString{Bytes: []byte{0xFF}, BitLength: 8}, true},
		"Partial":      {BitString{Bytes: []byte{0xFF}, BitLength: 3}, true},
		"TooFewBytes":  {BitString{Bytes: []byte{0xFF}, BitLength: 9}, false},
		"NegativeBits": {BitString{BitLength: -1}, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.s.IsValid(); got != tc.want {
				t.Errorf("IsValid() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestBitString_RightAlign(t *testing.T) {
	s := BitString{Bytes: []byte{0x6E, 0x5D, 0xC0}, BitLength: 18}
	want := []byte{0x01, 0xB9, 0x77}
	if got := s.RightAlign(); !bytes.Equal(got, want) {
		t.Errorf("RightAlign() = % X, want % X", got, want)
	}

	aligned := BitString{Bytes: []byte{0xAA}, BitLength: 8}
	if got := aligned.RightAlign(); !bytes.Equal(got, []byte{0xAA}) {
		t.Errorf("RightAlign() = % X, want AA", got)
	}
}

func TestParseOID(t *testing.T) {
	tests := map[string]struct {
		s       string
		want    ObjectIdentifier
		wantErr bool
	}{
		"Simple":       {s: "1.2", want: ObjectIdentifier{1, 2}},
		"RSA":          {s: "1.2.840.113549", want: ObjectIdentifier{1, 2, 840, 113549}},
		"JointLarge":   {s: "2.999.3", want: ObjectIdentifier{2, 999, 3}},
		"SingleArc":    {s: "1", wantErr: true},
		"Empty":        {s: "", wantErr: true},
		"BadFirstArc":  {s: "3.1", wantErr: true},
		"BadSecondArc": {s: "1.40", wantErr: true},
		"NotANumber":   {s: "1.two", wantErr: true},
		"TrailingDot":  {s: "1.2.", wantErr: true},
		"NegativeArc":  {s: "1.-2", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseOID(tc.s)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseOID(%q) error = nil, want non-nil", tc.s)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOID(%q) error = %v", tc.s, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseOID(%q) = %v, want %v", tc.s, got, tc.want)
			}
			if got.String() != tc.s {
				t.Errorf("String() = %q, want %q", got.String(), tc.s)
			}
		})
	}
}

func TestObjectIdentifier_IsValid(t *testing.T) {
	tests := map[string]struct {
		oid  ObjectIdentifier
		want bool
	}{
		"Nil":            {nil, false},
		"SingleArc":      {ObjectIdentifier{1}, false},
		"Simple":         {ObjectIdentifier{1, 2}, true},
		"JointLarge":     {ObjectIdentifier{2, 999}, true},
		"FirstTooLarge":  {ObjectIdentifier{3, 1}, false},
		"SecondTooLarge": {ObjectIdentifier{1, 40}, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.oid.IsValid(); got != tc.want {
				t.Errorf("IsValid() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestStringValidation(t *testing.T) {
	tests := map[string]struct {
		valid   []string
		invalid []string
		check   func(string) bool
	}{
		"Numeric": {
			valid:   []string{"", "0123456789", "12 34"},
			invalid: []string{"12a", "-1", "1.2"},
			check:   func(s string) bool { return NumericString(s).IsValid() },
		},
		"Printable": {
			valid:   []string{"", "Test User 1", "a(b)c", "2024-01-01", "why?"},
			invalid: []string{"foo*bar", "a;b", "a&b", "\tx"},
			check:   func(s string) bool { return PrintableString(s).IsValid() },
		},
		"IA5": {
			valid:   []string{"", "test@example.com", "a\tb\n"},
			invalid: []string{"héllo", "🙂"},
			check:   func(s string) bool { return IA5String(s).IsValid() },
		},
		"Visible": {
			valid:   []string{"", "abc DEF 123", "~"},
			invalid: []string{"a\nb", "\x7F", "héllo"},
			check:   func(s string) bool { return VisibleString(s).IsValid() },
		},
		"UTF8": {
			valid:   []string{"", "héllo", "🙂"},
			invalid: []string{"\xFF", "\xC0\x80"},
			check:   func(s string) bool { return UTF8String(s).IsValid() },
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for _, s := range tc.valid {
				if !tc.check(s) {
					t.Errorf("IsValid(%q) = false, want true", s)
				}
			}
			for _, s := range tc.invalid {
				if tc.check(s) {
					t.Errorf("IsValid(%q) = true, want false", s)
				}
			}
		})
	}
}
