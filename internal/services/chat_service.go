// Package services – ChatService
//
// This file implements ChatService, the proxy between the chat endpoints and
// the text-generation runtimes. It validates the request, resolves the
// document context (fresh upload or a previously stored file), folds in the
// earlier turns of a conversation when one is referenced, builds the prompt
// and asks the model.
//
// Upstream failures never surface as errors: the answer is the fallback
// apology and AskResult.Degraded is set.
package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/extract"
	"github.com/tbourn/support-chat-backend/internal/history"
	"github.com/tbourn/support-chat-backend/internal/llm"
	"github.com/tbourn/support-chat-backend/internal/repo"
	"github.com/tbourn/support-chat-backend/internal/search"
)

// FileStore is the part of FileService the chat flow needs.
type FileStore interface {
	Store(ctx context.Context, userID uint, filename string, r io.Reader) (*domain.File, error)
	GetOwned(ctx context.Context, id, userID uint) (*domain.File, error)
}

// ChatService answers prompts through the configured generators.
type ChatService struct {
	DB        *gorm.DB
	LLM       llm.Generator
	FineTuned llm.Generator
	Files     FileStore
	Config    llm.Config
}

// Upload is a document sent along with a prompt.
type Upload struct {
	Filename string
	Body     io.Reader
}

// AskInput is a chat request. Upload and FileID are mutually exclusive;
// Upload wins when both are set.
type AskInput struct {
	Prompt         string
	Model          string
	Upload         *Upload
	FileID         *uint
	ConversationID *uint
}

// AskResult is the answer returned to the client.
type AskResult struct {
	Response string         `json:"response"`
	Model    string         `json:"model"`
	FileID   *uint          `json:"file_id,omitempty"`
	Degraded bool           `json:"degraded"`
	Soft     *llm.SoftError `json:"-"`
}

// Ask answers prompt with the requested (or default) model.
func (s *ChatService) Ask(ctx context.Context, userID uint, in AskInput) (*AskResult, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Ask",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Bool("upload", in.Upload != nil),
		),
	)
	defer span.End()

	question := strings.TrimSpace(in.Prompt)
	if question == "" {
		return nil, ErrEmptyPrompt
	}
	model, ok := s.Config.ResolveModel(in.Model)
	if !ok {
		return nil, ErrUnsupportedModel
	}
	span.SetAttributes(attribute.String("llm.model", model))

	file, err := s.resolveFile(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	var pairs []history.Pair
	if in.ConversationID != nil {
		c, err := repo.GetConversation(ctx, s.DB, *in.ConversationID, userID)
		if err != nil {
			return nil, mapConversationErr(err)
		}
		pairs = history.Pairs(c.MessageUser, c.MessageBot)
	}

	prompt := llm.BuildPrompt(llm.PromptInput{
		Question: question,
		Context:  s.documentContext(question, file),
		History:  pairs,
	}, s.Config.Language, s.Config.ContextMaxChars)

	res := s.LLM.Ask(ctx, model, prompt)
	out := &AskResult{
		Response: res.Text,
		Model:    model,
		Degraded: res.Degraded(),
		Soft:     res.Soft,
	}
	if file != nil {
		id := file.ID
		out.FileID = &id
	}
	span.SetAttributes(attribute.Bool("llm.degraded", out.Degraded))
	return out, nil
}

// AskFineTuned sends prompt as-is to the fine-tuned model.
func (s *ChatService) AskFineTuned(ctx context.Context, prompt string) (*AskResult, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "AskFineTuned")
	defer span.End()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	res := s.FineTuned.Ask(ctx, llm.FineTunedModel, prompt)
	span.SetAttributes(attribute.Bool("llm.degraded", res.Degraded()))
	return &AskResult{
		Response: res.Text,
		Model:    res.Model,
		Degraded: res.Degraded(),
		Soft:     res.Soft,
	}, nil
}

func (s *ChatService) resolveFile(ctx context.Context, userID uint, in AskInput) (*domain.File, error) {
	switch {
	case in.Upload != nil:
		if s.Files == nil {
			return nil, errors.New("chat: no file store configured")
		}
		return s.Files.Store(ctx, userID, in.Upload.Filename, in.Upload.Body)
	case in.FileID != nil:
		if s.Files == nil {
			return nil, ErrFileNotFound
		}
		return s.Files.GetOwned(ctx, *in.FileID, userID)
	default:
		return nil, nil
	}
}

// documentContext picks the paragraphs of the file that fit the prompt
// budget. A single oversize paragraph is passed through for BuildPrompt to
// cut.
func (s *ChatService) documentContext(question string, f *domain.File) string {
	if f == nil || f.ContentText == "" || f.ContentText == extract.Unsupported {
		return ""
	}
	picked := search.Select(question, f.ContentText, s.Config.ContextMaxChars)
	if picked == "" {
		return f.ContentText
	}
	return picked
}
