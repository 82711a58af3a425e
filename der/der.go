// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der implements the ASN.1 Distinguished Encoding Rules (DER) on top
// of the [codello.dev/x690/tlv] package. The Distinguished Encoding Rules are
// defined in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// Encoding always produces the canonical DER form. Decoding additionally
// accepts the laxer BER forms of the same data: indefinite and non-minimal
// lengths, any non-zero octet for a TRUE boolean, arbitrary padding bits in a
// BIT STRING, and SET values in any order.
//
// See the package documentation of the x690 package for details how Go types
// translate to ASN.1 types. The following limitations apply:
//
//   - When decoding an ASN.1 INTEGER type into a Go integer the size of the
//     value is limited by the size of the Go type. This limitation does not
//     apply to [*math/big.Int].
//   - When decoding a constructed value into an array the number of values
//     must match the length of the array exactly.
//   - Decoding into an interface{} stores the data value as a [RawValue].
//
// # Struct Tags
//
// The encoding of struct fields can be customized using the `asn1` struct
// tag. The tag string is a comma-separated list of the following options:
//
//   - "-" causes a field to be ignored.
//   - "tag:x" prefixes the field with the context-specific tag number x. By
//     default the tag is applied IMPLICITLY, replacing the tag of the field's
//     type.
//   - "explicit" applies the tag EXPLICITLY, wrapping the field's encoding in
//     an additional constructed data value. Requires "tag:x".
//   - "application", "private", "universal" change the class of "tag:x".
//   - "optional" marks the field as OPTIONAL. An absent optional field
//     decodes to its zero value.
//   - "omitzero" additionally omits the field during encoding if it holds its
//     zero value.
//   - "set" encodes a struct or slice field as a SET instead of a SEQUENCE.
//
// The same options can be passed to [MarshalWithParams] and
// [UnmarshalWithParams] to apply to the top-level value.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package der

import (
	"fmt"
	"io"

	"codello.dev/x690"
	"codello.dev/x690/tlv"
)

// DerEncoder is the interface implemented by types that can encode themselves
// into a single data value encoding. Implementations return the identifier
// and contents octets of their encoding; framing is done by the caller.
type DerEncoder interface {
	DerEncode() (tlv.Value, error)
}

// DerDecoder is the interface implemented by types that can decode themselves
// from a data value encoding. The Contents of the passed value share memory
// with the decoding input and must not be retained.
//
// Implementations are responsible for validating the identifier of the value,
// usually in combination with the [DerMatcher] interface.
type DerDecoder interface {
	DerDecode(val tlv.Value) error
}

// DerMatcher is the interface implemented by types that accept a non-standard
// set of identifiers. It is consulted when deciding whether a data value
// belongs to an OPTIONAL field or a CHOICE variant. Types that do not
// implement DerMatcher match the natural identifier of their Go type.
type DerMatcher interface {
	DerMatch(id x690.Identifier) bool
}

// A RawValue represents an un-decoded data value. During decoding the syntax
// of the value has been validated, so Bytes is guaranteed to contain
// well-formed contents octets. During encoding the bytes are written as-is
// without any validation.
type RawValue struct {
	Identifier x690.Identifier
	Bytes      []byte // contents octets
}

// Values returns a cursor over the data values encoded in rv.Bytes. This is
// only meaningful if rv uses the constructed encoding.
func (rv RawValue) Values() *Values {
	return &Values{rest: rv.Bytes}
}

// String returns a string representation of rv. The byte contents of rv are
// only included if they are short enough.
func (rv RawValue) String() string {
	if len(rv.Bytes) > 24 {
		return fmt.Sprintf("RawValue{%s {%d bytes}}", rv.Identifier, len(rv.Bytes))
	}
	return fmt.Sprintf("RawValue{%s {% X}}", rv.Identifier, rv.Bytes)
}

// An Encoder writes DER-encoded values to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w}
}

// Encode writes the DER encoding of val to the stream. Errors from the
// underlying [io.Writer] are returned unmodified.
func (e *Encoder) Encode(val any) error {
	b, err := Marshal(val)
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

// A Decoder reads DER-encoded values from an input stream. The decoder reads
// the entire stream on the first call to Decode. TLV framing needs random
// access to the input, so incremental reading offers no benefit.
type Decoder struct {
	r      io.Reader
	buf    []byte
	err    error
	loaded bool
}

// NewDecoder returns a new Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the next value from its input and stores it in val. At the end
// of the input Decode returns [io.EOF]. Errors from the underlying
// [io.Reader] are returned unmodified.
func (d *Decoder) Decode(val any) error {
	if err := d.load(); err != nil {
		return err
	}
	if len(d.buf) == 0 {
		return io.EOF
	}
	rest, err := Decode(d.buf, val)
	if err != nil {
		return err
	}
	d.buf = rest
	return nil
}

// More reports whether there is another value in the input stream.
func (d *Decoder) More() bool {
	return d.load() == nil && len(d.buf) > 0
}

func (d *Decoder) load() error {
	if !d.loaded {
		d.buf, d.err = io.ReadAll(d.r)
		d.loaded = true
	}
	return d.err
}
