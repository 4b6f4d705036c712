package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/termparse"
)

func newParseTermCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "parse-term <file|->",
		Short: "Parse extracted term text and print the preview as JSON",
		Long:  "Runs the term import parser offline. Room numbers are not matched against the inventory and nothing is stored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importMode := models.ImportMode(strings.ToLower(mode))
			switch importMode {
			case models.ImportModeAuto, models.ImportModeList, models.ImportModeTable:
			default:
				return fmt.Errorf("unknown mode %q: use auto, list or table", mode)
			}

			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			preview := termparse.New().Parse(text, importMode)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(preview)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(models.ImportModeAuto), "extraction mode: auto, list or table")
	return cmd
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(raw), nil
}
