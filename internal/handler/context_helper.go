package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/middleware"
	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/service"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
	"github.com/noah-isme/court-facilities-api/pkg/response"
)

const dateLayout = "2006-01-02"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, size := 1, 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be YYYY-MM-DD", key))
	}
	return &t, nil
}

// readUpload opens the multipart "file" field. The returned closer must be called.
func readUpload(c *gin.Context) (service.Upload, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return service.Upload{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	closer := func() { _ = src.Close() }

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			closer()
			return service.Upload{}, nil, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
		}
		reader = bytes.NewReader(buf)
	}
	return service.Upload{Filename: fileHeader.Filename, Size: fileHeader.Size, Content: reader}, closer, nil
}

func streamDownload(c *gin.Context, result *service.FileDownload, disposition string) {
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}
