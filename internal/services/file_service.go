// Package services – FileService
//
// This file implements FileService, which stores documents uploaded with a
// chat prompt and keeps the text extracted from them so later questions can
// reuse the same document without re-uploading it.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/extract"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

// DefaultUploadMaxBytes caps uploads when FileService.MaxBytes is unset.
const DefaultUploadMaxBytes int64 = 10 << 20

// FileService persists uploads under Dir/<user id>/.
type FileService struct {
	DB       *gorm.DB
	Dir      string
	MaxBytes int64
	// Extract turns a stored file into text; defaults to extract.File.
	Extract func(path string) (string, error)
}

// NewFileService constructs a FileService rooted at dir.
func NewFileService(db *gorm.DB, dir string, maxBytes int64) *FileService {
	return &FileService{DB: db, Dir: dir, MaxBytes: maxBytes, Extract: extract.File}
}

// Store writes r to disk under a random name that keeps the original
// extension, extracts its text and records a File row. Extraction failures
// are logged and leave the content empty.
func (s *FileService) Store(ctx context.Context, userID uint, filename string, r io.Reader) (*domain.File, error) {
	tr := otel.Tracer("services/FileService")
	ctx, span := tr.Start(ctx, "Store",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.String("file.ext", filepath.Ext(filename)),
		),
	)
	defer span.End()

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultUploadMaxBytes
	}

	ext := strings.ToLower(filepath.Ext(filename))
	dir := filepath.Join(s.Dir, strconv.FormatUint(uint64(userID), 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+ext)

	n, err := writeLimited(path, r, limit)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("file.bytes", n))

	extractFn := s.Extract
	if extractFn == nil {
		extractFn = extract.File
	}
	text, err := extractFn(path)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("file", filepath.Base(path)).Msg("text extraction failed")
		text = ""
	}

	f := &domain.File{
		UserID:      userID,
		FilePath:    path,
		FileType:    strings.TrimPrefix(ext, "."),
		ContentText: text,
	}
	if err := repo.CreateFile(ctx, s.DB, f); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return f, nil
}

// writeLimited copies at most limit bytes of r into path. A longer stream
// yields ErrFileTooLarge.
func writeLimited(path string, r io.Reader, limit int64) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(out, io.LimitReader(r, limit+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write upload: %w", err)
	}
	if n > limit {
		return n, ErrFileTooLarge
	}
	return n, nil
}

// GetOwned returns a file owned by userID.
func (s *FileService) GetOwned(ctx context.Context, id, userID uint) (*domain.File, error) {
	f, err := repo.GetFile(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}
