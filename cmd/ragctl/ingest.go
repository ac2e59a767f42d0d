package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	ragate "github.com/kailas-cloud/ragate/pkg/sdk"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.json>",
	Short: "Ingest documents from a JSON file",
	Long: `Reads documents from a JSON file and stores them in the collection.
The file holds either {"documents": [...]} or a bare array of
{id?, content, source?, date?, type?} objects.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

type fileDocument struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Date    string `json:"date"`
	Type    string `json:"type"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if client == nil {
		return errors.New("gateway not configured")
	}

	data, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	docs, err := parseDocuments(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	n, err := client.Ingest(cmd.Context(), docs)
	if err != nil {
		cmd.PrintErrf("stored %d of %d documents before failing\n", n, len(docs))
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %d of %d documents\n", n, len(docs))
	return nil
}

func parseDocuments(data []byte) ([]ragate.Document, error) {
	var raw []fileDocument
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	} else {
		var envelope struct {
			Documents []fileDocument `json:"documents"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		raw = envelope.Documents
	}

	docs := make([]ragate.Document, len(raw))
	for i, d := range raw {
		docs[i] = ragate.Document{ID: d.ID, Content: d.Content, Source: d.Source, Date: d.Date, Type: d.Type}
	}
	return docs, nil
}
