package core

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrUploadTimeout   = errors.New("media host timed out")

	// allowedFormats mirrors the media host allow-list; matching is on the
	// file extension, the way the host itself filters formats.
	allowedFormats = map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".pdf":  {},
		".doc":  {},
		".docx": {},
		".txt":  {},
		".mp4":  {},
	}
)

type (
	// Upload is a client-supplied file on its way to the media host.
	Upload struct {
		Filename    string
		ContentType string
		Size        int64
		Content     io.Reader
	}

	// Attachment is the reference kept once the media host has the bytes.
	// PublicID is required to delete the remote object later; ContentType
	// is kept so the resource kind can be inferred at deletion time.
	Attachment struct {
		URL         string `json:"url"`
		PublicID    string `json:"public_id"`
		ContentType string `json:"-"`
	}

	// MediaService relays files to the external media host and stores
	// nothing itself. Deletion is best-effort.
	MediaService interface {
		Upload(ctx context.Context, up Upload) (Attachment, error)
		Delete(ctx context.Context, publicID, contentType string) error
	}
)

func (a Attachment) IsZero() bool { return a.URL == "" && a.PublicID == "" }

// CheckUpload enforces the server-side upload policy independently of any
// client-side compression: size ceiling and format allow-list.
func CheckUpload(up Upload, maxSize int64) error {
	if up.Size > maxSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if _, ok := allowedFormats[ext]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

// ResourceKind maps a stored MIME type to the media host resource kind
// required by its delete API.
func ResourceKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "raw" // pdf, word, plain text, ...
	}
}
