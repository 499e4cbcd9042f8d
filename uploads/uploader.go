//go:generate go run go.uber.org/mock/mockgen -source=uploader.go -destination=../mocks/mock_uploader.go -package=mocks

// Package uploads implements the attachment collaborator: it turns raw
// file payloads into resolved FileRefs before a message is committed. The
// chat core itself never performs uploads; it only accepts resolved refs.
package uploads

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"chat-core/domain"
)

// RawFile is an attachment as received from the caller, before resolution.
type RawFile struct {
	Name    string
	Content []byte
}

type Uploader interface {
	Upload(ctx context.Context, file RawFile) (domain.FileRef, error)
}

// LocalUploader resolves attachments in-process: it sniffs the MIME type
// from content and mints a stable URL under a base prefix. It stands in
// for a real blob-store collaborator in tests and single-node setups.
type LocalUploader struct {
	baseURL string
	log     *slog.Logger
}

func NewLocalUploader(baseURL string, log *slog.Logger) *LocalUploader {
	return &LocalUploader{baseURL: baseURL, log: log}
}

func (u *LocalUploader) Upload(ctx context.Context, file RawFile) (domain.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.FileRef{}, err
	}
	if len(file.Content) == 0 {
		return domain.FileRef{}, fmt.Errorf("empty file %q", file.Name)
	}

	// Detection never fails; unknown content comes back as
	// application/octet-stream.
	mtype := mimetype.Detect(file.Content)

	ref := domain.FileRef{
		ID:   uuid.NewString(),
		Name: file.Name,
		Type: mtype.String(),
		URL:  fmt.Sprintf("%s/%s%s", u.baseURL, uuid.NewString(), mtype.Extension()),
	}
	u.log.Debug("Resolved attachment", "name", file.Name, "type", ref.Type)
	return ref, nil
}
