/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sss implements threshold secret sharing over GF(256).
// A secret of L bytes is split into shares of L bytes each by evaluating,
// per byte position, a random polynomial whose constant term is the secret
// byte. The evaluation points are the share indices {1, ..., n}.
package sss

import (
	"io"

	"github.com/pkg/errors"

	"github.com/shameless/shameless/gf"
	. "github.com/shameless/shameless/types"
)

// Sharer splits and reconstructs secrets. It carries only the read-only
// field tables and may be shared across concurrent invocations.
type Sharer struct {
	field *gf.Field
}

func NewSharer() *Sharer {
	return &Sharer{field: gf.New()}
}

// polynomial holds coefficients with the constant term first.
type polynomial []byte

func (p polynomial) valueAt(f *gf.Field, x byte) byte {
	var sum byte
	for i := len(p) - 1; i >= 0; i-- {
		sum = f.Add(f.Mul(sum, x), p[i])
	}
	return sum
}

// Split shares the secret among n parties such that any t of them can
// reconstruct it. Polynomial coefficients are drawn from rand, which must be
// a cryptographically secure source; a fresh polynomial is drawn for every
// byte position, so shares carry no cross-position correlations.
func (s *Sharer) Split(secret []byte, n, t uint8, rand io.Reader) ([]Share, error) {
	if t < MinThreshold || t > n {
		return nil, errors.Wrapf(ErrInvalidThreshold, "threshold %d with %d shares", t, n)
	}

	shares := make([]Share, n)
	for i := range shares {
		shares[i] = Share{
			Index:     uint8(i + 1),
			Threshold: t,
			Payload:   make([]byte, len(secret)),
		}
	}

	coefficients := make(polynomial, t)
	defer wipe(coefficients)

	for position, secretByte := range secret {
		coefficients[0] = secretByte
		if _, err := io.ReadFull(rand, coefficients[1:]); err != nil {
			return nil, errors.Wrap(err, "failed drawing random coefficients")
		}

		for i := range shares {
			shares[i].Payload[position] = coefficients.valueAt(s.field, shares[i].Index)
		}
	}

	return shares, nil
}

// Reconstruct recovers the secret from at least as many shares as the
// threshold they declare. Every byte position is obtained by Lagrange
// interpolation at x = 0 over the supplied points.
func (s *Sharer) Reconstruct(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, errors.Wrap(ErrInsufficientShares, "no shares supplied")
	}

	threshold := shares[0].Threshold
	payloadLen := len(shares[0].Payload)
	indices := make(map[uint8]struct{}, len(shares))

	for _, share := range shares {
		if share.Threshold != threshold {
			return nil, errors.Wrapf(ErrThresholdMismatch, "%d vs %d", share.Threshold, threshold)
		}
		if _, exists := indices[share.Index]; exists {
			return nil, errors.Wrapf(ErrDuplicateShare, "index %d appears twice", share.Index)
		}
		indices[share.Index] = struct{}{}
		if len(share.Payload) != payloadLen {
			return nil, errors.Wrapf(ErrPayloadLengthMismatch, "%d bytes vs %d bytes",
				len(share.Payload), payloadLen)
		}
	}

	if len(shares) < int(threshold) {
		return nil, errors.Wrapf(ErrInsufficientShares, "got %d shares, threshold is %d",
			len(shares), threshold)
	}

	secret := make([]byte, payloadLen)
	for position := range secret {
		b, err := s.interpolateAtZero(shares, position)
		if err != nil {
			return nil, err
		}
		secret[position] = b
	}

	return secret, nil
}

// interpolateAtZero evaluates the unique interpolating polynomial of the
// supplied points at x = 0, which is the secret byte at this position.
func (s *Sharer) interpolateAtZero(shares []Share, position int) (byte, error) {
	var sum byte
	for i := range shares {
		coefficient, err := s.lagrangeCoefficient(shares, i)
		if err != nil {
			return 0, err
		}
		sum = s.field.Add(sum, s.field.Mul(coefficient, shares[i].Payload[position]))
	}
	return sum, nil
}

// lagrangeCoefficient computes the basis polynomial of point i at x = 0,
// the product of x_j / (x_i - x_j) over all other points j.
func (s *Sharer) lagrangeCoefficient(shares []Share, i int) (byte, error) {
	product := byte(1)
	for j := range shares {
		if i == j {
			continue
		}

		nominator := shares[j].Index
		denominator := s.field.Add(shares[i].Index, shares[j].Index)

		division, err := s.field.Div(nominator, denominator)
		if err != nil {
			// Unreachable as long as indices are nonzero and pairwise distinct
			return 0, err
		}
		product = s.field.Mul(product, division)
	}
	return product, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
