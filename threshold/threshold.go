/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package threshold coordinates the mnemonic codec, the secret sharer and
// the share codec into the two user facing operations: splitting a mnemonic
// into self-describing share phrases, and combining share phrases back into
// the original mnemonic.
package threshold

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/shameless/shameless/mnemonic"
	"github.com/shameless/shameless/share"
	"github.com/shameless/shameless/sss"
	. "github.com/shameless/shameless/types"
)

// Scheme performs Split and Combine. All state below the config fields is
// read-only after construction, so a single Scheme serves concurrent calls.
type Scheme struct {
	// Config
	Rand   io.Reader
	Logger Logger
	// Collaborators
	codec  *mnemonic.Codec
	shares *share.Codec
	sharer *sss.Sharer
}

// SplitResult is the outcome of a Split: the share phrases, ordered by
// share index, and a summary of the parameters they were produced under.
type SplitResult struct {
	EntropyByteLength int
	ShareCount        uint8
	Threshold         uint8
	Shares            []string
}

// ShareMetadata is the self-describing header of a single share phrase.
type ShareMetadata struct {
	Threshold  uint8
	ShareIndex uint8
}

// NewScheme creates a Scheme drawing randomness from crypto/rand.
// Both the randomness source and the logger can be overridden before use.
func NewScheme(logger Logger) *Scheme {
	if logger == nil {
		logger = nopLogger{}
	}

	codec := mnemonic.NewCodec()
	return &Scheme{
		Rand:   rand.Reader,
		Logger: logger,
		codec:  codec,
		shares: share.NewCodec(codec),
		sharer: sss.NewSharer(),
	}
}

// Split decodes the mnemonic, shares its entropy among n parties with
// threshold t, and encodes every share as a self-describing phrase.
func (s *Scheme) Split(mnemonicText string, n, t uint8) (*SplitResult, error) {
	entropy, err := s.codec.Decode(mnemonicText)
	if err != nil {
		return nil, err
	}
	defer wipe(entropy)

	if t < MinThreshold || t > n {
		return nil, errors.Wrapf(ErrInvalidThreshold, "threshold %d with %d shares", t, n)
	}

	s.Logger.Debugf("Splitting %d bytes of entropy into %d shares with threshold %d", len(entropy), n, t)

	shares, err := s.sharer.Split(entropy, n, t, s.Rand)
	if err != nil {
		return nil, err
	}
	defer wipeShares(shares)

	phrases := make([]string, 0, len(shares))
	for _, sh := range shares {
		phrase, err := s.shares.Encode(sh)
		if err != nil {
			return nil, err
		}
		phrases = append(phrases, phrase)
	}

	s.Logger.Infof("Split a %d byte secret into %d shares, any %d of which reconstruct it", len(entropy), n, t)

	return &SplitResult{
		EntropyByteLength: len(entropy),
		ShareCount:        n,
		Threshold:         t,
		Shares:            phrases,
	}, nil
}

// Combine decodes the share phrases, reconstructs the entropy from them and
// re-encodes it as the original mnemonic. The shares declare their own
// threshold; supplying fewer distinct shares than it fails.
func (s *Scheme) Combine(phrases []string) (string, error) {
	if len(phrases) == 0 {
		return "", errors.Wrap(ErrInsufficientShares, "no shares supplied")
	}

	shares := make([]Share, 0, len(phrases))
	indices := make(map[uint8]struct{}, len(phrases))

	for i, phrase := range phrases {
		sh, err := s.shares.Decode(phrase)
		if err != nil {
			return "", errors.Wrapf(err, "share #%d", i+1)
		}

		if len(shares) > 0 && sh.Threshold != shares[0].Threshold {
			return "", errors.Wrapf(ErrThresholdMismatch,
				"share #%d declares threshold %d, previous shares declare %d", i+1, sh.Threshold, shares[0].Threshold)
		}
		if _, exists := indices[sh.Index]; exists {
			return "", errors.Wrapf(ErrDuplicateShare, "share #%d carries index %d again", i+1, sh.Index)
		}
		indices[sh.Index] = struct{}{}

		shares = append(shares, sh)
	}
	defer wipeShares(shares)

	threshold := shares[0].Threshold
	if len(shares) < int(threshold) {
		return "", errors.Wrapf(ErrInsufficientShares, "got %d shares, threshold is %d", len(shares), threshold)
	}

	if s.Logger.DebugEnabled() {
		indices := make([]uint8, len(shares))
		for i, sh := range shares {
			indices[i] = sh.Index
		}
		s.Logger.Debugf("Combining shares %v with threshold %d", indices, threshold)
	}

	entropy, err := s.sharer.Reconstruct(shares)
	if err != nil {
		return "", err
	}
	defer wipe(entropy)

	recovered, err := s.codec.Encode(entropy)
	if err != nil {
		return "", err
	}

	s.Logger.Infof("Reconstructed a %d byte secret from %d shares", len(entropy), len(shares))

	return recovered, nil
}

// ParseShareMetadata reads the threshold and index a share phrase declares,
// without requiring any other share.
func (s *Scheme) ParseShareMetadata(phrase string) (ShareMetadata, error) {
	threshold, index, err := s.shares.ParseMetadata(phrase)
	if err != nil {
		return ShareMetadata{}, err
	}
	return ShareMetadata{Threshold: threshold, ShareIndex: index}, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func wipeShares(shares []Share) {
	for i := range shares {
		wipe(shares[i].Payload)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) DebugEnabled() bool            { return false }
