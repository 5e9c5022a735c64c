/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package gf implements arithmetic over GF(256), the finite field of byte
// values modulo the irreducible polynomial x^8 + x^4 + x^3 + x + 1 (0x11b),
// the same field block ciphers such as AES are defined over.
package gf

import (
	. "github.com/shameless/shameless/types"
)

const (
	// x^8 + x^4 + x^3 + x + 1
	irreduciblePolynomial = 0x11b

	fieldSize = 256
)

// Field holds the logarithm and anti-logarithm tables of GF(256).
// It is built once and read-only afterwards, so a single Field may be
// shared freely across goroutines.
type Field struct {
	log     [fieldSize]byte
	antilog [fieldSize]byte
}

// New builds the log and antilog tables from the generator 3 (x + 1).
func New() *Field {
	f := &Field{}

	x := uint16(1)
	for i := 0; i < fieldSize-1; i++ {
		f.antilog[i] = byte(x)
		f.log[x] = byte(i)

		// Multiply by the generator: x * 3 = (x << 1) ^ x
		x = (x << 1) ^ x
		if x >= fieldSize {
			x ^= irreduciblePolynomial
		}
	}
	// The multiplicative group is cyclic with order 255
	f.antilog[fieldSize-1] = 1

	return f
}

// Add returns a + b. In a field of characteristic 2, addition and
// subtraction are both XOR.
func (f *Field) Add(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b via the log tables.
func (f *Field) Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.antilog[(int(f.log[a])+int(f.log[b]))%(fieldSize-1)]
}

// Div returns a / b, or ErrDivisionByZero when b is the zero element.
func (f *Field) Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	if a == 0 {
		return 0, nil
	}

	diff := (int(f.log[a]) - int(f.log[b])) % (fieldSize - 1)
	if diff < 0 {
		diff += fieldSize - 1
	}
	return f.antilog[diff], nil
}
