/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// shameless splits BIP39 mnemonics into self-describing secret shares and
// combines such shares back into the original mnemonic. Input is read from
// stdin so phrases never appear in shell history or process listings.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shameless/shameless/threshold"
	. "github.com/shameless/shameless/types"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	scheme := threshold.NewScheme(logger())

	cmd := &cobra.Command{
		Use:           "shameless",
		Short:         "Split a BIP39 mnemonic into threshold secret shares",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(splitCmd(scheme), combineCmd(scheme), infoCmd(scheme))
	return cmd
}

func splitCmd(scheme *threshold.Scheme) *cobra.Command {
	var shares, thresh uint8

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Read a mnemonic from stdin and print its share phrases",
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}

			res, err := scheme.Split(mnemonic, shares, thresh)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entropy: %d bytes; created %d shares, any %d reconstruct the secret\n\n",
				res.EntropyByteLength, res.ShareCount, res.Threshold)
			for i, phrase := range res.Shares {
				fmt.Fprintf(out, "Share #%d:\n%s\n\n", i+1, phrase)
			}
			return nil
		},
	}

	cmd.Flags().Uint8VarP(&shares, "shares", "n", 0, "number of shares to create")
	cmd.Flags().Uint8VarP(&thresh, "threshold", "t", 0, "minimum number of shares needed to reconstruct")
	cmd.MarkFlagRequired("shares")
	cmd.MarkFlagRequired("threshold")

	return cmd
}

func combineCmd(scheme *threshold.Scheme) *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Read share phrases from stdin, one per line, and print the reconstructed mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			phrases, err := readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}

			mnemonic, err := scheme.Combine(phrases)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), mnemonic)
			return nil
		},
	}
}

func infoCmd(scheme *threshold.Scheme) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Read a single share phrase from stdin and print its threshold and index",
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}

			md, err := scheme.ParseShareMetadata(phrase)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Share #%d of a %d-share threshold\n", md.ShareIndex, md.Threshold)
			return nil
		},
	}
}

func readLine(in io.Reader) (string, error) {
	lines, err := readLines(in)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("no input on stdin")
	}
	return lines[0], nil
}

func readLines(in io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

type cliLogger struct {
	debugEnabled bool
	*zap.SugaredLogger
}

func (cl *cliLogger) DebugEnabled() bool {
	return cl.debugEnabled
}

func logger() Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	debugEnabled := logConfig.Level.Enabled(zapcore.DebugLevel)
	l, _ := logConfig.Build()
	return &cliLogger{SugaredLogger: l.Sugar(), debugEnabled: debugEnabled}
}
