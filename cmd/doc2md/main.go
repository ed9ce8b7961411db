// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the doc2md CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doc2md/internal/config"
	"github.com/pdiddy/doc2md/internal/convert"
	"github.com/pdiddy/doc2md/internal/vision"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	flagModel    string
	flagEndpoint string
	flagConfig   string
	flagOutput   string
)

// rootCmd converts one image or PDF file into Markdown.
var rootCmd = &cobra.Command{
	Use:   "doc2md <input-file>",
	Short: "Extract Markdown text from an image or PDF via a vision model",
	Long: `doc2md sends an image, or each rendered page of a PDF, to an
OpenAI-compatible vision chat-completion endpoint and prints the returned
Markdown. Pages are processed sequentially in document order and joined
with a blank line.

By default the tool targets a local Ollama instance; use --endpoint,
--model, or a TOML config file to point it elsewhere. An API key, when
needed, comes from the config file or the DOC2MD_API_KEY / OPENAI_API_KEY
environment variables.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Resolve(flagConfig, flagEndpoint, flagModel)
		if err != nil {
			return err
		}

		client := &vision.Client{
			Endpoint: settings.Endpoint,
			Model:    settings.Model,
			APIKey:   settings.APIKey,
		}

		return convert.Run(cmd.Context(), args[0], client, convert.Options{
			OutputPath: flagOutput,
			Stdout:     cmd.OutOrStdout(),
			Progress:   cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "",
		fmt.Sprintf("model identifier for text extraction (default: %s)", config.DefaultModel))
	rootCmd.Flags().StringVarP(&flagEndpoint, "endpoint", "e", "",
		fmt.Sprintf("OpenAI-compatible endpoint URL (default: %s)", config.DefaultEndpoint))
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "",
		"TOML config file with endpoint, model, and api_key keys (optionally under [llm])")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "",
		"write the result to this file instead of stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
