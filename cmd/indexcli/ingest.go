package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"indexcore/internal/analysis"
	"indexcore/internal/directory"
	"indexcore/internal/document"
	"indexcore/internal/storage"
	"indexcore/internal/writer"
)

func ingestCmd() *cobra.Command {
	var schemaPath string
	var threads int

	c := &cobra.Command{
		Use:   "ingest <jsonl-file>",
		Short: "Ingest a JSONL file of documents into the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], schemaPath, threads)
		},
	}

	c.Flags().StringVar(&schemaPath, "schema", "", "path to a schema config JSON file (required on first ingest into data-dir)")
	c.Flags().IntVar(&threads, "threads", runtime.NumCPU(), "number of indexing worker goroutines")
	return c
}

func runIngest(cmd *cobra.Command, path, schemaPath string, threads int) error {
	logger := newLogger(cmd)
	dataDir, _ := cmd.Flags().GetString("data-dir")

	if storage.DirExists(dataDir) {
		logger.Info("appending to existing index", "data_dir", dataDir)
	} else {
		logger.Info("initializing new index", "data_dir", dataDir)
	}

	sch, err := loadOrCreateSchema(dataDir, schemaPath)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	dir, err := directory.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}

	w, err := writer.Open(dir, sch, analysis.NewStandardTokenizer(), threads, logger)
	if err != nil {
		return fmt.Errorf("open writer: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	start := time.Now()
	var lineNo, ingested int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			logger.Warn("skipping malformed line", "line", lineNo, "error", err)
			continue
		}

		doc, err := document.FromJSON(sch, fields)
		if err != nil {
			logger.Warn("skipping document", "line", lineNo, "error", err)
			continue
		}

		if err := w.AddDocument(doc); err != nil {
			return fmt.Errorf("add document at line %d: %w", lineNo, err)
		}
		ingested++
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("read input: %w", err)
	}

	segments := w.Wait()
	logger.Info("ingest complete",
		"lines", lineNo,
		"documents", ingested,
		"segments", len(segments),
		"elapsed", time.Since(start).String(),
	)
	for _, info := range segments {
		logger.Info("segment published", "id", info.SegmentID, "max_doc", info.MaxDoc)
	}
	return nil
}
