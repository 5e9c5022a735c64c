/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shameless/shameless/mnemonic"
	"github.com/shameless/shameless/share"
	. "github.com/shameless/shameless/types"
)

const (
	mnemonic12 = "legal winner thank year wave sausage worth useful legal winner thank yellow"
	mnemonic24 = "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo vote"
)

type testLogger struct {
	debugEnabled bool
	*zap.SugaredLogger
}

func (tl *testLogger) DebugEnabled() bool {
	return tl.debugEnabled
}

func logger(testName string) Logger {
	logConfig := zap.NewDevelopmentConfig()
	debugEnabled := logConfig.Level.Enabled(zapcore.DebugLevel)
	l, _ := logConfig.Build()
	l = l.With(zap.String("t", testName))
	return &testLogger{SugaredLogger: l.Sugar(), debugEnabled: debugEnabled}
}

// subsets returns all k-element subsets of items.
func subsets(items []string, k int) [][]string {
	if k == 0 {
		return [][]string{nil}
	}
	if len(items) < k {
		return nil
	}

	var res [][]string
	for _, tail := range subsets(items[1:], k-1) {
		res = append(res, append([]string{items[0]}, tail...))
	}
	return append(res, subsets(items[1:], k)...)
}

func TestSplitCombineScenario(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res, err := s.Split(mnemonic12, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, EntropySize128, res.EntropyByteLength)
	assert.Equal(t, uint8(5), res.ShareCount)
	assert.Equal(t, uint8(3), res.Threshold)
	require.Len(t, res.Shares, 5)

	for i, phrase := range res.Shares {
		assert.True(t, strings.HasPrefix(phrase, share.VersionWord+" "))
		for j := i + 1; j < len(res.Shares); j++ {
			assert.NotEqual(t, phrase, res.Shares[j])
		}
	}

	// Any 3 of the 5 shares reconstruct the original phrase
	triples := subsets(res.Shares, 3)
	require.Len(t, triples, 10)
	for _, triple := range triples {
		recovered, err := s.Combine(triple)
		require.NoError(t, err)
		assert.Equal(t, mnemonic12, recovered)
	}

	// Any 2 of the 5 fail with insufficient shares
	pairs := subsets(res.Shares, 2)
	require.Len(t, pairs, 10)
	for _, pair := range pairs {
		_, err := s.Combine(pair)
		assert.ErrorIs(t, err, ErrInsufficientShares)
	}
}

func TestSplitCombine24Words(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res, err := s.Split(mnemonic24, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, EntropySize256, res.EntropyByteLength)

	recovered, err := s.Combine([]string{res.Shares[3], res.Shares[1]})
	require.NoError(t, err)
	assert.Equal(t, mnemonic24, recovered)
}

func TestSplitPropagatesCodecFailures(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	_, err := s.Split("not a mnemonic", 3, 2)
	assert.ErrorIs(t, err, ErrInvalidWordCount)

	_, err = s.Split("legal winner thank year wave sausage worth useful legal winner thank blorp", 3, 2)
	assert.ErrorIs(t, err, ErrUnknownWord)

	_, err = s.Split(strings.Repeat("abandon ", 11)+"abandon", 3, 2)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSplitRejectsBadThreshold(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	for _, tc := range []struct {
		n, t uint8
	}{
		{n: 5, t: 1},
		{n: 5, t: 0},
		{n: 2, t: 3},
	} {
		_, err := s.Split(mnemonic12, tc.n, tc.t)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
}

func TestCombineRejectsCorruptedShare(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res, err := s.Split(mnemonic12, 5, 3)
	require.NoError(t, err)

	// Corrupt one word in the data region of the third share
	fields := strings.Fields(res.Shares[2])
	if fields[10] == "abandon" {
		fields[10] = "zoo"
	} else {
		fields[10] = "abandon"
	}
	corrupted := strings.Join(fields, " ")

	_, err = s.Combine([]string{res.Shares[0], res.Shares[1], corrupted})
	require.Error(t, err)
	detected := errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrUnrecognizedFormat)
	assert.True(t, detected, "got %v", err)
}

func TestCombineRejectsTamperedShareIndex(t *testing.T) {
	s := NewScheme(logger(t.Name()))
	words := mnemonic.NewCodec()

	res, err := s.Split(mnemonic12, 3, 2)
	require.NoError(t, err)

	// Rewrite the first share's parameter word so it claims a different
	// index. The share would interpolate at the wrong point, so combining
	// must fail instead of returning a plausible-looking wrong mnemonic.
	fields := strings.Fields(res.Shares[0])
	value, exists := words.Index(fields[1])
	require.True(t, exists)
	fields[1] = words.Word(value ^ 2)
	tampered := strings.Join(fields, " ")

	_, err = s.Combine([]string{tampered, res.Shares[1]})
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestCombineRejectsMixedThresholds(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res2, err := s.Split(mnemonic12, 3, 2)
	require.NoError(t, err)
	res3, err := s.Split(mnemonic12, 3, 3)
	require.NoError(t, err)

	_, err = s.Combine([]string{res2.Shares[0], res3.Shares[1], res3.Shares[2]})
	assert.ErrorIs(t, err, ErrThresholdMismatch)
}

func TestCombineRejectsDuplicates(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res, err := s.Split(mnemonic12, 5, 3)
	require.NoError(t, err)

	_, err = s.Combine([]string{res.Shares[0], res.Shares[1], res.Shares[0]})
	assert.ErrorIs(t, err, ErrDuplicateShare)
}

func TestCombineRejectsEmptyInput(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	_, err := s.Combine(nil)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestCombineRejectsForeignPhrases(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	_, err := s.Combine([]string{mnemonic12})
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestParseShareMetadata(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res, err := s.Split(mnemonic12, 5, 3)
	require.NoError(t, err)

	for i, phrase := range res.Shares {
		md, err := s.ParseShareMetadata(phrase)
		require.NoError(t, err)
		assert.Equal(t, uint8(3), md.Threshold)
		assert.Equal(t, uint8(i+1), md.ShareIndex)
	}

	_, err = s.ParseShareMetadata(mnemonic12)
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestMixedPayloadLengths(t *testing.T) {
	s := NewScheme(logger(t.Name()))

	res12, err := s.Split(mnemonic12, 3, 2)
	require.NoError(t, err)
	res24, err := s.Split(mnemonic24, 3, 2)
	require.NoError(t, err)

	_, err = s.Combine([]string{res12.Shares[0], res24.Shares[1]})
	assert.ErrorIs(t, err, ErrPayloadLengthMismatch)
}
