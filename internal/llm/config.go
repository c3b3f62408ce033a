// Package llm talks to the text-generation runtimes behind the chat
// endpoints: an Ollama server and a fine-tuned model exposed through a small
// /predict service.
//
// Clients never surface upstream failures as errors. Ask returns a Result
// whose Text is either the model's answer or a fallback apology, and whose
// Soft field records why the answer was degraded.
package llm

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config is resolved once at startup.
type Config struct {
	BaseURL          string
	FineTunedBaseURL string
	DefaultModel     string
	// Models is the allow-list of model names callers may request.
	// Empty means only DefaultModel.
	Models          []string
	Timeout         time.Duration
	ContextMaxChars int
	Language        language.Tag
}

// DefaultConfig mirrors the runtime defaults of a local Ollama install.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:11434",
		FineTunedBaseURL: "http://localhost:5000",
		DefaultModel:     "llama3.2",
		Timeout:          30 * time.Second,
		ContextMaxChars:  4000,
		Language:         language.French,
	}
}

// ResolveModel returns the model to use for a request. An empty name picks
// the default; ok is false when name is not allow-listed.
func (c Config) ResolveModel(name string) (model string, ok bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.DefaultModel, true
	}
	if name == c.DefaultModel {
		return name, true
	}
	for _, m := range c.Models {
		if m == name {
			return name, true
		}
	}
	return "", false
}
