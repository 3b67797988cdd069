package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tzpatch/internal/buf"
	"github.com/joshuapare/tzpatch/internal/mmfile"
	"github.com/joshuapare/tzpatch/pkg/sig"
)

var (
	scanMask    string
	scanStart   int
	scanMaxScan int
	scanContext int
)

func init() {
	rootCmd.AddCommand(newScanCmd())
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file> <signature>",
		Short: "Report every offset where a signature matches",
		Long: `The scan command searches a binary for a signature and prints each match
offset without modifying the file. Use it to check that a signature is unique
before adding it to a manifest.

Signatures are space-separated hex bytes; ?? matches any byte.

Example:
  tzpatch scan bin/trainz.exe "C2 08 00 6A 08"
  tzpatch scan lib.dll "8B 44 ?? 04" --mask "FF FF 00 FF" --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args)
		},
	}
	cmd.Flags().StringVar(&scanMask, "mask", "", "Per-byte mask, same length as the signature")
	cmd.Flags().IntVar(&scanStart, "start", 0, "First offset to examine")
	cmd.Flags().IntVar(&scanMaxScan, "max", 0, "Maximum number of offsets to examine (0 = to end)")
	cmd.Flags().IntVar(&scanContext, "context", 8, "Bytes of context to show around each match")
	return cmd
}

type scanMatch struct {
	Offset  int    `json:"offset"`
	Context string `json:"context"`
}

type scanResult struct {
	File      string      `json:"file"`
	Signature string      `json:"signature"`
	Size      int         `json:"size"`
	Matches   []scanMatch `json:"matches"`
}

func runScan(args []string) error {
	path := args[0]

	s, err := sig.Parse(args[1])
	if err != nil {
		return err
	}
	m, err := sig.ParseMask(scanMask)
	if err != nil {
		return err
	}
	// Reject mask mismatches before opening the file.
	if err := sig.CheckMask(s, m); err != nil {
		return err
	}

	printVerbose("Mapping: %s\n", path)
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer cleanup()

	offs, err := sig.FindAll(data, s, sig.Options{Mask: m, Start: scanStart, MaxScan: scanMaxScan})
	if err != nil {
		return err
	}

	res := scanResult{File: path, Signature: s.String(), Size: len(data)}
	for _, off := range offs {
		res.Matches = append(res.Matches, scanMatch{Offset: off, Context: contextBytes(data, off, len(s), scanContext)})
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("%s (%d bytes): %s\n", path, len(data), s)
	for _, match := range res.Matches {
		printInfo("  0x%08X  %s\n", match.Offset, match.Context)
	}
	switch len(offs) {
	case 0:
		return fmt.Errorf("%w: %s in %s", sig.ErrPatternNotFound, s, path)
	case 1:
		printInfo("1 match\n")
	default:
		printInfo("%d matches (signature is not unique)\n", len(offs))
	}
	return nil
}

// contextBytes renders the match with up to n bytes either side, the match
// itself in brackets.
func contextBytes(data []byte, off, sigLen, n int) string {
	lo := off - n
	if lo < 0 {
		lo = 0
	}
	before, _ := buf.Slice(data, lo, off-lo)
	match, _ := buf.Slice(data, off, sigLen)

	tail := n
	if !buf.Has(data, off+sigLen, tail) {
		tail = len(data) - off - sigLen
	}
	after, _ := buf.Slice(data, off+sigLen, tail)
	return fmt.Sprintf("% X [% X] % X", before, match, after)
}
