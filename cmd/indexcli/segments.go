package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"indexcore/internal/directory"
	"indexcore/internal/segment"
	"indexcore/internal/storage"
)

func segmentsCmd() *cobra.Command {
	var verbose bool

	c := &cobra.Command{
		Use:   "segments",
		Short: "List published segments in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSegments(cmd, verbose)
		},
	}
	c.Flags().BoolVar(&verbose, "verbose", false, "also list each segment's artifact files")
	return c
}

func runSegments(cmd *cobra.Command, verbose bool) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	dir, err := directory.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}

	ids, err := dir.ListSegments()
	if err != nil {
		return fmt.Errorf("list segments: %w", err)
	}

	for _, id := range ids {
		segDir := dir.SegmentDir(id)
		info, err := segment.ReadSegmentInfo(segDir)
		if err != nil {
			fmt.Printf("%s: error: %v\n", id, err)
			continue
		}
		fmt.Printf("%s  max_doc=%d  created=%s\n", info.SegmentID, info.MaxDoc, info.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))

		if verbose {
			files, err := storage.ListFiles(segDir)
			if err != nil {
				return fmt.Errorf("list files for %s: %w", id, err)
			}
			for _, f := range files {
				fmt.Printf("  %s\n", f)
			}
		}
	}
	return nil
}

func gcCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "gc",
		Short: "Remove orphaned staging directories left by a crashed ingest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGC(cmd)
		},
	}
	return c
}

func runGC(cmd *cobra.Command) error {
	logger := newLogger(cmd)
	dataDir, _ := cmd.Flags().GetString("data-dir")

	dir, err := directory.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}

	removed, err := dir.ResetStaging()
	if err != nil {
		return fmt.Errorf("reset staging: %w", err)
	}
	logger.Info("staging reset", "removed", len(removed))
	for _, p := range removed {
		logger.Info("removed orphan", "path", p)
	}
	return nil
}
