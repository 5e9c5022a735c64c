/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package shameless

import "github.com/pkg/errors"

const (
	// EntropySize128 is the entropy length of a 12 word mnemonic, in bytes.
	EntropySize128 = 16
	// EntropySize256 is the entropy length of a 24 word mnemonic, in bytes.
	EntropySize256 = 32

	// MinThreshold is the smallest threshold that actually hides the secret.
	MinThreshold = 2
)

// Logger logs messages in a synchronized fashion to the same destination (usually to a file)
type Logger interface {
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Warnf(format string, a ...interface{})
	Errorf(format string, a ...interface{})
	DebugEnabled() bool
}

// Share is a single secret share: the evaluation point it was produced at,
// the threshold it was produced under, and the per-byte polynomial values.
// The payload has the same length as the secret it was derived from.
type Share struct {
	Index     uint8
	Threshold uint8
	Payload   []byte
}

// Failure kinds returned by the codecs, the sharer and the scheme.
// They are wrapped with context along the way; match them with errors.Is.
var (
	ErrInvalidWordCount      = errors.New("invalid word count")
	ErrUnknownWord           = errors.New("unknown word")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrInvalidEntropyLength  = errors.New("invalid entropy length")
	ErrInvalidThreshold      = errors.New("invalid threshold")
	ErrInvalidShareIndex     = errors.New("invalid share index")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrDuplicateShare        = errors.New("duplicate share")
	ErrThresholdMismatch     = errors.New("threshold mismatch")
	ErrPayloadLengthMismatch = errors.New("payload length mismatch")
	ErrUnrecognizedFormat    = errors.New("unrecognized share format")
	ErrDivisionByZero        = errors.New("division by zero")
)
