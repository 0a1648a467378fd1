package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ticket-resale/internal/status"
	"ticket-resale/security"
	"ticket-resale/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"
)

type UploadHandler struct {
	intake    *services.IntakeService
	dir       string
	maxUpload int64
}

func NewUploadHandler(intake *services.IntakeService, dir string, maxUpload int64) *UploadHandler {
	return &UploadHandler{intake: intake, dir: dir, maxUpload: maxUpload}
}

var mediaExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

func allowedFile(name string, allowed map[string]bool) bool {
	return allowed[strings.ToLower(filepath.Ext(name))]
}

// saveUpload writes the multipart file under a uuid-prefixed name and
// returns the stored file name.
func (h *UploadHandler) saveUpload(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.NewString(), "-", ""), filepath.Base(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Upload stores a media file and returns its public path.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respond(c, http.StatusBadRequest, "No file provided")
	}
	if !allowedFile(fh.Filename, mediaExtensions) {
		return respond(c, http.StatusBadRequest, "Invalid file type")
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return respond(c, http.StatusBadRequest, "File too large")
	}

	name, err := h.saveUpload(fh)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"file_url": "/uploads/" + name})
}

// Intake runs the OCR and structured-extraction pipeline on an uploaded
// ticket image and posts the resulting listing. The stored image is kept
// only when a ticket ends up referencing it.
func (h *UploadHandler) Intake(c echo.Context) error {
	askingPrice, err := decimal.NewFromString(c.FormValue("selling_price"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Missing or invalid selling_price in request")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return respond(c, http.StatusBadRequest, "No image uploaded")
	}
	if !allowedFile(fh.Filename, imageExtensions) {
		return respond(c, http.StatusBadRequest, "Invalid file type")
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return respond(c, http.StatusBadRequest, "File too large")
	}

	name, err := h.saveUpload(fh)
	if err != nil {
		return errorJSON(c, err)
	}
	imagePath := filepath.Join(h.dir, name)

	ctx := c.Request().Context()

	ext, err := h.intake.ExtractDraft(ctx, imagePath)
	if err != nil {
		h.discard(imagePath)
		return errorJSON(c, err)
	}

	id, err := h.intake.Commit(ctx, ext, security.UserID(c), askingPrice, "/uploads/"+name)
	if err != nil {
		h.discard(imagePath)
		if errors.Is(err, status.ErrIncompleteExtraction) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error": "Missing fields in extracted data",
				"data":  ext,
			})
		}
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message":   "Ticket posted",
		"ticket_id": id,
	})
}

func (h *UploadHandler) discard(path string) {
	if err := os.Remove(path); err != nil {
		slog.Error("discard rejected upload", "path", path, "error", err)
	}
}
