// Package main implements the extract CLI, which runs the attraction
// extractor over an assistant reply without starting the server.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/attractions"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// extractionDefaults returns the flag defaults from the embedded config.
func extractionDefaults() config.ExtractionConfig {
	cfg, err := config.Embedded()
	if err != nil {
		return config.ExtractionConfig{MaxAttractionsPerResponse: attractions.DefaultMaxAttractions}
	}
	return cfg.Extraction
}

func newRootCmd() *cobra.Command {
	var (
		maxAttractions int
		image          string
	)
	defaults := extractionDefaults()

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract attractions from an assistant reply",
		Long: `Extract attractions from a travel assistant reply and print them as JSON.

Examples:
  # Extract from a file
  extract reply.txt

  # Extract from stdin, keeping at most three records
  cat reply.txt | extract --max 3 -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(string(content)) == "" {
				return errors.New("no content to extract from")
			}

			extractor := attractions.NewExtractor(attractions.Config{
				MaxAttractions: maxAttractions,
				DefaultImage:   image,
			})
			found := extractor.Extract(string(content))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(found); err != nil {
				return fmt.Errorf("failed to encode attractions: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAttractions, "max", defaults.MaxAttractionsPerResponse, "maximum number of attractions to return")
	cmd.Flags().StringVar(&image, "image", defaults.DefaultAttractionImage, "placeholder image URL attached to every attraction")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return content, nil
}
