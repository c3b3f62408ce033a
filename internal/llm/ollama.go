package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

const backendOllama = "ollama"

// Generator produces a completion for a prompt.
type Generator interface {
	Ask(ctx context.Context, model, prompt string) Result
}

// Ollama calls POST <base>/api/generate without streaming.
type Ollama struct {
	baseURL string
	hc      *http.Client
	timeout time.Duration
	lang    language.Tag
	model   string
}

// NewOllama builds a client from cfg. A nil hc uses a fresh http.Client.
func NewOllama(cfg Config, hc *http.Client) *Ollama {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Ollama{
		baseURL: cfg.BaseURL,
		hc:      hc,
		timeout: cfg.Timeout,
		lang:    cfg.Language,
		model:   cfg.DefaultModel,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Ask sends prompt to model (the default model when empty). Upstream
// failures yield the fallback text with Soft set.
func (o *Ollama) Ask(ctx context.Context, model, prompt string) Result {
	if model == "" {
		model = o.model
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	var out generateResponse
	err := postJSON(ctx, o.hc, backendOllama, joinURL(o.baseURL, "/api/generate"), generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	}, &out)

	var soft *SoftError
	switch {
	case err != nil:
		soft = classify(backendOllama, err)
	case strings.TrimSpace(out.Response) == "":
		soft = &SoftError{Backend: backendOllama, Kind: SoftEmpty}
	}
	observe(backendOllama, start, soft)

	if soft != nil {
		zerolog.Ctx(ctx).Warn().Err(soft).Str("model", model).Msg("llm fallback")
		return Result{Text: Fallback(o.lang), Model: model, Soft: soft}
	}
	return Result{Text: out.Response, Model: model}
}
