package api

import (
	"io"
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// maxImageBytes bounds a single OCR upload (§6.1 POST /agent/image).
const maxImageBytes = 8 * 1024 * 1024

// imageHandler handles POST /agent/image: a multipart image upload is
// handed to the OCR collaborator and its raw transcription returned
// unmodified — the core never post-processes it (§6.1).
func (s *Server) imageHandler(c *echo.Context) error {
	file, header, err := c.Request().FormFile("image")
	if err != nil {
		return newAPIError(errInvalidRequest, `multipart field "image" is required`)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return newAPIError(errInternal, "failed to read uploaded image")
	}
	if len(data) > maxImageBytes {
		return newAPIError(errInvalidRequest, "image exceeds maximum upload size")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	text, confidence, err := s.ocr.Extract(c.Request().Context(), data, mimeType)
	if err != nil {
		return newAPIError(errInternal, "image transcription failed")
	}

	return c.JSON(http.StatusOK, &ImageResponse{OCRText: text, Confidence: confidence})
}
