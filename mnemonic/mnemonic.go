/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mnemonic converts between raw entropy and BIP39 mnemonic phrases
// over the standard English wordlist.
package mnemonic

import (
	"crypto/sha256"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39/wordlists"

	. "github.com/shameless/shameless/types"
)

const (
	// WordCount12 and WordCount24 are the only valid phrase lengths.
	WordCount12 = 12
	WordCount24 = 24

	bitsPerWord  = 11
	wordlistSize = 2048
)

// Codec maps entropy to phrases and back. Both lookup directions are O(1):
// index to word through the list itself, word to index through a map built
// once. A Codec is read-only after construction and safe for concurrent use.
type Codec struct {
	words   []string
	indices map[string]int
}

// NewCodec builds a codec over the standard English wordlist.
func NewCodec() *Codec {
	c := &Codec{
		words:   wordlists.English,
		indices: make(map[string]int, wordlistSize),
	}
	for i, word := range c.words {
		c.indices[word] = i
	}
	return c
}

// Word returns the word at the given wordlist index.
func (c *Codec) Word(index int) string {
	return c.words[index]
}

// Index returns the wordlist index of the given word.
func (c *Codec) Index(word string) (int, bool) {
	i, ok := c.indices[word]
	return i, ok
}

// Encode derives the mnemonic phrase of the given entropy: the leading
// len(entropy)/4 bits of SHA-256(entropy) are appended as a checksum, and
// the combined bit stream is mapped to words 11 bits at a time.
func (c *Codec) Encode(entropy []byte) (string, error) {
	if len(entropy) != EntropySize128 && len(entropy) != EntropySize256 {
		return "", errors.Wrapf(ErrInvalidEntropyLength, "got %d bytes, want %d or %d",
			len(entropy), EntropySize128, EntropySize256)
	}

	checksumBits := len(entropy) / 4
	digest := sha256.Sum256(entropy)

	words := make([]string, 0, (len(entropy)*8+checksumBits)/bitsPerWord)

	var group uint16
	groupBits := 0
	appendBits := func(b byte, count int) {
		for i := count - 1; i >= 0; i-- {
			group = group<<1 | uint16(b>>i&1)
			groupBits++
			if groupBits == bitsPerWord {
				words = append(words, c.words[group])
				group, groupBits = 0, 0
			}
		}
	}

	for _, b := range entropy {
		appendBits(b, 8)
	}
	appendBits(digest[0]>>(8-checksumBits), checksumBits)

	return strings.Join(words, " "), nil
}

// Decode recovers the entropy of a phrase, verifying the embedded checksum.
func (c *Codec) Decode(phrase string) ([]byte, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) != WordCount12 && len(words) != WordCount24 {
		return nil, errors.Wrapf(ErrInvalidWordCount, "got %d words, want %d or %d",
			len(words), WordCount12, WordCount24)
	}

	entropyLen := len(words) * bitsPerWord * 32 / 33 / 8
	checksumBits := entropyLen / 4

	entropy := make([]byte, entropyLen)
	var checksum byte
	bitIndex := 0

	for _, word := range words {
		index, exists := c.indices[word]
		if !exists {
			return nil, errors.Wrapf(ErrUnknownWord, "%q is not in the wordlist", word)
		}

		for i := bitsPerWord - 1; i >= 0; i-- {
			bit := byte(index>>i) & 1
			if bitIndex < entropyLen*8 {
				entropy[bitIndex/8] = entropy[bitIndex/8]<<1 | bit
			} else {
				checksum = checksum<<1 | bit
			}
			bitIndex++
		}
	}

	digest := sha256.Sum256(entropy)
	if checksum != digest[0]>>(8-checksumBits) {
		return nil, errors.Wrapf(ErrChecksumMismatch,
			"expected checksum %0*b, got %0*b", checksumBits, digest[0]>>(8-checksumBits), checksumBits, checksum)
	}

	return entropy, nil
}
