package uploads

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestUploader(t *testing.T) *LocalUploader {
	t.Helper()
	return NewLocalUploader("local://files", slog.New(slog.DiscardHandler))
}

func TestLocalUploader_Resolves_A_FileRef_With_Sniffed_Type(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(t)

	ref, err := uploader.Upload(context.Background(), RawFile{
		Name:    "readme.txt",
		Content: []byte("plain text content"),
	})

	req.NoError(err)
	req.NotEmpty(ref.ID)
	req.Equal("readme.txt", ref.Name)
	req.Contains(ref.Type, "text/plain")
	req.True(strings.HasPrefix(ref.URL, "local://files/"))
}

func TestLocalUploader_Detects_Binary_Types_From_Content(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(t)

	// A minimal PNG header; the declared name is deliberately misleading
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	ref, err := uploader.Upload(context.Background(), RawFile{Name: "photo.txt", Content: png})

	req.NoError(err)
	req.Equal("image/png", ref.Type)
	req.True(strings.HasSuffix(ref.URL, ".png"))
}

func TestLocalUploader_Rejects_Empty_Files(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(t)

	_, err := uploader.Upload(context.Background(), RawFile{Name: "void.bin"})

	req.Error(err)
	req.Contains(err.Error(), "void.bin")
}

func TestLocalUploader_Honors_Context_Cancellation(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uploader.Upload(ctx, RawFile{Name: "late.txt", Content: []byte("content")})

	req.ErrorIs(err, context.Canceled)
}

func TestLocalUploader_Each_Upload_Gets_A_Distinct_Id(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(t)
	file := RawFile{Name: "same.txt", Content: []byte("same content")}

	first, err := uploader.Upload(context.Background(), file)
	req.NoError(err)
	second, err := uploader.Upload(context.Background(), file)
	req.NoError(err)

	req.NotEqual(first.ID, second.ID)
	req.NotEqual(first.URL, second.URL)
}
