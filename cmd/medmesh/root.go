package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "medmesh",
	Short: "Clinical input routing pipeline",
	Long: `MedMesh routes clinical input to a specialist agent and returns a
structured result:

- clinical notes become ICD-10 codes
- clinician/patient transcripts become SOAP notes
- medical images become radiology reports

Configuration is read from an optional YAML file (--config) and MEDMESH_*
environment variables. Provider keys may also be given as OPENAI_API_KEY,
ANTHROPIC_API_KEY or GEMINI_API_KEY.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}
