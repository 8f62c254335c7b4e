package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/internal/imageutil"
)

var (
	analyzeNote  string
	analyzeImage string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a note and/or image once and print the JSON response",
	Example: `  medmesh analyze --note "Patient presents with acute appendicitis."
  medmesh analyze --image chest.png --note "Is there a pneumothorax?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readInput(analyzeNote, analyzeImage)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.WithoutCancel(ctx)) //nolint:errcheck

		resp := a.mesh.Analyze(ctx, in)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}

		if resp.Failed() {
			return errors.New(resp.Error)
		}
		return nil
	},
}

func readInput(note, imagePath string) (core.Input, error) {
	in := core.Input{Note: note}

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return core.Input{}, fmt.Errorf("read image: %w", err)
		}
		img, err := imageutil.DecodeRGB(data)
		if err != nil {
			return core.Input{}, fmt.Errorf("%s: %w", imagePath, err)
		}
		in.Image = img
	}

	if err := in.Validate(); err != nil {
		return core.Input{}, err
	}
	return in, nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeNote, "note", "n", "", "Clinical note, transcript or question")
	analyzeCmd.Flags().StringVarP(&analyzeImage, "image", "i", "", "Path to a medical image (PNG, JPEG, GIF or WebP)")
}
