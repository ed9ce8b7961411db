// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves the effective endpoint, model, and API key for a
// run from CLI flags, an optional TOML config file, the environment, and
// built-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Built-in defaults target a local Ollama instance.
const (
	DefaultEndpoint = "http://localhost:11434/v1/chat/completions"
	DefaultModel    = "qwen2.5vl:latest"
)

// API key environment variables, in priority order.
const (
	toolKeyEnv    = "DOC2MD_API_KEY"
	genericKeyEnv = "OPENAI_API_KEY"
)

// configKeys are the recognized keys of the config file, flat or under [llm].
var configKeys = []string{"endpoint", "model", "api_key"}

// Settings is the effective endpoint/model/api_key triple for one run.
// An empty APIKey means no Authorization header is sent.
type Settings struct {
	Endpoint string
	Model    string
	APIKey   string
}

// fileConfig holds the recognized string values found in a config file.
type fileConfig struct {
	endpoint string
	model    string
	apiKey   string
}

// Resolve computes the effective settings. Precedence for endpoint and model
// is CLI flag, then config file, then default; for the API key it is config
// file, then DOC2MD_API_KEY, then OPENAI_API_KEY. configPath may be empty;
// a non-empty path that is missing or unparseable is an error.
func Resolve(configPath, flagEndpoint, flagModel string) (Settings, error) {
	var fc fileConfig
	if configPath != "" {
		var err error
		fc, err = loadFile(configPath)
		if err != nil {
			return Settings{}, err
		}
	}

	s := Settings{
		Endpoint: firstNonEmpty(flagEndpoint, fc.endpoint, DefaultEndpoint),
		Model:    firstNonEmpty(flagModel, fc.model, DefaultModel),
		APIKey:   firstNonEmpty(fc.apiKey, os.Getenv(toolKeyEnv), os.Getenv(genericKeyEnv)),
	}
	return s, nil
}

// loadFile parses the TOML config at path. Keys may sit at the top level or
// under an [llm] table; when [llm] is present it replaces the flat keys
// entirely. Non-string values are treated as absent.
func loadFile(path string) (fileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return fileConfig{}, fmt.Errorf("config file not found: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fileConfig{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	base := map[string]any{}
	if llm, ok := v.Get("llm").(map[string]any); ok {
		base = llm
	} else {
		for _, k := range configKeys {
			base[k] = v.Get(k)
		}
	}

	var fc fileConfig
	if s, ok := base["endpoint"].(string); ok {
		fc.endpoint = s
	}
	if s, ok := base["model"].(string); ok {
		fc.model = s
	}
	if s, ok := base["api_key"].(string); ok {
		fc.apiKey = s
	}
	return fc, nil
}

// firstNonEmpty returns the first non-empty string among its arguments.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
