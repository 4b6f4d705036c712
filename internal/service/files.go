package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type fileStorage interface {
	SaveStream(relPath string, r io.Reader) (int64, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type urlSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

// Upload carries a multipart file to a service.
type Upload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// FileDownload is an opened stored file ready to be streamed. Callers close File.
type FileDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
}

// SignedURL is a time-limited download link.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// checkUpload enforces the size limit and sniffs the content type from the first
// 512 bytes, ignoring whatever type the client declared.
func checkUpload(upload Upload, maxSize int64, allowed map[string]struct{}) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > maxSize {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", maxSize))
	}
	header := make([]byte, 512)
	n, err := io.ReadFull(upload.Content, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	mimeType := http.DetectContentType(header[:n])
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if _, ok := allowed[mimeType]; !ok {
		return "", appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("content type %s is not allowed", mimeType))
	}
	return mimeType, nil
}

func mimeSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}

func mimeExtension(mimeType string) string {
	switch mimeType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
