package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorflow/vector/pkg/buffer"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vector-bufferctl: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vector-bufferctl",
	Short: "Inspect and repair a disk buffer's segment directory",
	Long:  "vector-bufferctl reads a disk buffer's on-disk segments directly, without a running engine, for diagnosing or recovering from a crash.",
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <dir>",
	Short: "Report every segment's record count and any corruption, without modifying anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := buffer.Inspect(args[0])
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair <dir>",
	Short: "Discard a truncated tail record left by a crash mid-write, then report the result",
	Long: "repair opens the buffer (triggering the same crash-recovery truncation a running engine " +
		"performs on startup) and closes it again. It never touches a corrupt record earlier in a " +
		"segment — only a partial record at the very end.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := buffer.Repair(args[0])
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd, repairCmd)
}

func printReport(report buffer.Report) {
	fmt.Printf("%s\n", report.Dir)
	for _, seg := range report.Segments {
		status := "ok"
		switch {
		case seg.Corrupt:
			status = "CORRUPT"
		case seg.TruncatedTail:
			status = "truncated tail"
		}
		fmt.Printf("  segment %d: %d bytes, %d records, %s\n", seg.ID, seg.SizeBytes, seg.RecordCount, status)
	}
	if report.Cursor.Present {
		fmt.Printf("  cursor: segment %d, offset %d\n", report.Cursor.SegmentID, report.Cursor.Offset)
	} else {
		fmt.Printf("  cursor: none persisted\n")
	}
}
