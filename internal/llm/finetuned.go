package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

const backendFineTuned = "finetuned"

// FineTunedModel is the model name reported for /predict answers.
const FineTunedModel = "fine-tuned"

// FineTuned calls POST <base>/predict on the fine-tuned model service.
type FineTuned struct {
	baseURL string
	hc      *http.Client
	timeout time.Duration
	lang    language.Tag
}

// NewFineTuned builds a client from cfg. A nil hc uses a fresh http.Client.
func NewFineTuned(cfg Config, hc *http.Client) *FineTuned {
	if hc == nil {
		hc = &http.Client{}
	}
	return &FineTuned{
		baseURL: cfg.FineTunedBaseURL,
		hc:      hc,
		timeout: cfg.Timeout,
		lang:    cfg.Language,
	}
}

type predictRequest struct {
	Prompt string `json:"prompt"`
}

type predictResponse struct {
	Response      string `json:"response"`
	GeneratedText string `json:"generated_text"`
}

// Ask ignores model; the service hosts a single model.
func (f *FineTuned) Ask(ctx context.Context, _ string, prompt string) Result {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	var out predictResponse
	err := postJSON(ctx, f.hc, backendFineTuned, joinURL(f.baseURL, "/predict"), predictRequest{Prompt: prompt}, &out)

	text := out.Response
	if strings.TrimSpace(text) == "" {
		text = out.GeneratedText
	}

	var soft *SoftError
	switch {
	case err != nil:
		soft = classify(backendFineTuned, err)
	case strings.TrimSpace(text) == "":
		soft = &SoftError{Backend: backendFineTuned, Kind: SoftEmpty}
	}
	observe(backendFineTuned, start, soft)

	if soft != nil {
		zerolog.Ctx(ctx).Warn().Err(soft).Msg("llm fallback")
		return Result{Text: Fallback(f.lang), Model: FineTunedModel, Soft: soft}
	}
	return Result{Text: text, Model: FineTunedModel}
}
