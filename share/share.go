/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package share encodes secret shares as self-describing mnemonic phrases
// in the shamir39 wire format. A share phrase is:
//
//	"shameless" <parameter words> <data words>
//
// Parameter words pack the threshold (M) and share index (O) into 11-bit
// wordlist indices laid out as [continuation:1][M:5][O:5]; when either value
// needs more than 5 bits, two words are used, the first carrying the high
// bits with the continuation bit set. Data words carry the byte string
//
//	length (2 bytes, big endian) || payload || CRC32 (4 bytes, big endian)
//
// left-padded with zero bits to a multiple of 11 and mapped through the
// wordlist 11 bits at a time. The CRC is computed over the threshold and
// index bytes followed by the length-prefixed payload, so corrupting any
// header field is detected just like corrupting the payload itself.
// The phrase is self-describing: decoding needs no bookkeeping beyond the
// phrase itself.
package share

import (
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/pkg/errors"

	"github.com/shameless/shameless/mnemonic"
	. "github.com/shameless/shameless/types"
)

// VersionWord is the literal marker distinguishing a share phrase from a
// plain mnemonic.
const VersionWord = "shameless"

const (
	bitsPerWord     = 11
	continuationBit = 1 << 10
	parameterMask   = 0x1f

	// length prefix and CRC32 surrounding the payload
	dataOverhead = 2 + 4

	dataWords128 = (EntropySize128 + dataOverhead) * 8 / bitsPerWord    // 16, no padding
	dataWords256 = ((EntropySize256+dataOverhead)*8 + 10) / bitsPerWord // 28, 4 padding bits
)

// Codec encodes and decodes share phrases. It only consults the read-only
// wordlist lookups, so a single Codec is safe for concurrent use.
type Codec struct {
	words *mnemonic.Codec
}

func NewCodec(words *mnemonic.Codec) *Codec {
	return &Codec{words: words}
}

// Encode packs the share into a phrase. The payload must be 16 or 32 bytes,
// the index nonzero and the threshold at least 2.
func (c *Codec) Encode(share Share) (string, error) {
	if share.Threshold < MinThreshold {
		return "", errors.Wrapf(ErrInvalidThreshold, "threshold %d", share.Threshold)
	}
	if share.Index == 0 {
		return "", errors.Wrap(ErrInvalidShareIndex, "share index 0 is not an evaluation point")
	}
	if len(share.Payload) != EntropySize128 && len(share.Payload) != EntropySize256 {
		return "", errors.Wrapf(ErrInvalidEntropyLength, "payload of %d bytes", len(share.Payload))
	}

	data := make([]byte, dataOverhead+len(share.Payload))
	binary.BigEndian.PutUint16(data[:2], uint16(len(share.Payload)))
	copy(data[2:], share.Payload)
	sum := checksum(share.Threshold, share.Index, data[:2+len(share.Payload)])
	binary.BigEndian.PutUint32(data[2+len(share.Payload):], sum)

	words := []string{VersionWord}
	words = append(words, c.parameterWords(share.Threshold, share.Index)...)
	words = append(words, c.dataWords(data)...)

	return strings.Join(words, " "), nil
}

// Decode destructures a phrase back into a share. It is stateless: every
// phrase is validated on its own.
func (c *Codec) Decode(phrase string) (Share, error) {
	threshold, index, dataWords, err := c.parseHeader(phrase)
	if err != nil {
		return Share{}, err
	}

	var payloadLen int
	switch len(dataWords) {
	case dataWords128:
		payloadLen = EntropySize128
	case dataWords256:
		payloadLen = EntropySize256
	default:
		return Share{}, errors.Wrapf(ErrUnrecognizedFormat, "%d data words match no payload class", len(dataWords))
	}

	data, err := c.dataBytes(dataWords)
	if err != nil {
		return Share{}, err
	}

	declaredLen := int(binary.BigEndian.Uint16(data[:2]))
	if declaredLen != payloadLen {
		return Share{}, errors.Wrapf(ErrUnrecognizedFormat,
			"length field declares %d bytes but %d words carry %d", declaredLen, len(dataWords), payloadLen)
	}

	payload := data[2 : 2+payloadLen]
	expected := checksum(threshold, index, data[:2+payloadLen])
	actual := binary.BigEndian.Uint32(data[2+payloadLen:])
	if expected != actual {
		return Share{}, errors.Wrapf(ErrChecksumMismatch, "expected %08x, got %08x", expected, actual)
	}

	return Share{Index: index, Threshold: threshold, Payload: payload}, nil
}

// ParseMetadata decodes only the marker and parameter words, so the
// threshold and index of a share can be inspected without its full data.
func (c *Codec) ParseMetadata(phrase string) (threshold, index uint8, err error) {
	threshold, index, _, err = c.parseHeader(phrase)
	return threshold, index, err
}

func (c *Codec) parseHeader(phrase string) (uint8, uint8, []string, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 0 || words[0] != VersionWord {
		return 0, 0, nil, errors.Wrapf(ErrUnrecognizedFormat, "phrase does not begin with %q", VersionWord)
	}
	if len(words) < 3 {
		return 0, 0, nil, errors.Wrap(ErrUnrecognizedFormat, "phrase too short")
	}

	first, err := c.index(words[1])
	if err != nil {
		return 0, 0, nil, err
	}

	var m, o int
	parameterWords := 1
	if first&continuationBit != 0 {
		parameterWords = 2
		if len(words) < 4 {
			return 0, 0, nil, errors.Wrap(ErrUnrecognizedFormat, "phrase too short for two parameter words")
		}

		second, err := c.index(words[2])
		if err != nil {
			return 0, 0, nil, err
		}
		if second&continuationBit != 0 {
			return 0, 0, nil, errors.Wrap(ErrUnrecognizedFormat, "second parameter word has its continuation bit set")
		}

		m = (first>>5&parameterMask)<<5 | second>>5&parameterMask
		o = (first&parameterMask)<<5 | second&parameterMask
	} else {
		m = first >> 5 & parameterMask
		o = first & parameterMask
	}

	if m > 255 || o > 255 {
		return 0, 0, nil, errors.Wrapf(ErrUnrecognizedFormat, "parameters out of range: M=%d, O=%d", m, o)
	}
	if m < MinThreshold {
		return 0, 0, nil, errors.Wrapf(ErrInvalidThreshold, "threshold %d", m)
	}
	if o == 0 {
		return 0, 0, nil, errors.Wrap(ErrInvalidShareIndex, "share index 0")
	}

	return uint8(m), uint8(o), words[1+parameterWords:], nil
}

func (c *Codec) parameterWords(threshold, index uint8) []string {
	m, o := int(threshold), int(index)

	if m < 32 && o < 32 {
		return []string{c.words.Word(m<<5 | o)}
	}

	return []string{
		c.words.Word(continuationBit | (m>>5)<<5 | o>>5),
		c.words.Word((m&parameterMask)<<5 | o&parameterMask),
	}
}

func (c *Codec) dataWords(data []byte) []string {
	bitCount := len(data) * 8
	padding := (bitsPerWord - bitCount%bitsPerWord) % bitsPerWord

	words := make([]string, 0, (bitCount+padding)/bitsPerWord)

	group := uint16(0)
	groupBits := padding // leading zero bits align the data to a word boundary
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			group = group<<1 | uint16(b>>i&1)
			groupBits++
			if groupBits == bitsPerWord {
				words = append(words, c.words.Word(int(group)))
				group, groupBits = 0, 0
			}
		}
	}

	return words
}

func (c *Codec) dataBytes(words []string) ([]byte, error) {
	totalBits := len(words) * bitsPerWord
	byteCount := totalBits / 8
	padding := totalBits - byteCount*8

	data := make([]byte, byteCount)
	bitIndex := -padding // skip the leading pad bits

	for _, word := range words {
		index, err := c.index(word)
		if err != nil {
			return nil, err
		}
		for i := bitsPerWord - 1; i >= 0; i-- {
			if bitIndex >= 0 {
				data[bitIndex/8] = data[bitIndex/8]<<1 | byte(index>>i)&1
			}
			bitIndex++
		}
	}

	return data, nil
}

func (c *Codec) index(word string) (int, error) {
	i, exists := c.words.Index(word)
	if !exists {
		return 0, errors.Wrapf(ErrUnknownWord, "%q is not in the wordlist", word)
	}
	return i, nil
}

// checksum covers the header fields along with the length-prefixed payload,
// so a bit flip in the parameter words fails decoding the same way a bit
// flip in the data words does.
func checksum(threshold, index uint8, lengthAndPayload []byte) uint32 {
	sum := crc32.Update(0, crc32.IEEETable, []byte{threshold, index})
	return crc32.Update(sum, crc32.IEEETable, lengthAndPayload)
}
