// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der_test

import (
	"fmt"

	"codello.dev/x690"
	"codello.dev/x690/der"
)

func ExampleMarshal() {
	type attribute struct {
		Type  x690.ObjectIdentifier
		Value x690.PrintableString
	}
	b, err := der.Marshal(attribute{
		Type:  x690.ObjectIdentifier{2, 5, 4, 3},
		Value: "Lee",
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("% X\n", b)

	// Output: 30 0A 06 03 55 04 03 13 03 4C 65 65
}

func ExampleUnmarshal() {
	type version struct {
		Major, Minor int
	}
	var v version
	if err := der.Unmarshal([]byte{0x30, 0x06, 0x02, 0x01, 0x02, 0x02, 0x01, 0x07}, &v); err != nil {
		panic(err)
	}
	fmt.Printf("%d.%d\n", v.Major, v.Minor)

	// Output: 2.7
}

func ExampleSequence() {
	var seq der.Sequence
	_ = seq.Append(42)
	_ = seq.AppendWithParams("hi", "tag:0")
	b, err := der.Marshal(&seq)
	if err != nil {
		panic(err)
	}
	fmt.Printf("% X\n", b)

	// Output: 30 07 02 01 2A 80 02 68 69
}
