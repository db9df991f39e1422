package attachments

import (
	"errors"
	"mime"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/internal/storage"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

// CaseModel is the owner-model name case attachments are stored under.
const CaseModel = "legal.case"

type Handler struct {
	db *gorm.DB
	sb *storage.Supabase
}

func NewHandler(db *gorm.DB, sb *storage.Supabase) *Handler {
	return &Handler{db: db, sb: sb}
}

// Upload Case Attachments godoc
// @Summary      Upload attachments to a case (PDF/PNG)
// @Description  Stores up to 10 files in object storage and records metadata keyed by the owning case
// @Tags         attachments
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string   true  "case id (uuid)"
// @Param        files  formData  []file   true  "PDF/PNG (max 10)"
// @Success      201    {array}   map[string]any  "id, key, name, size"
// @Failure      400    {object}  models.ErrorResponse
// @Failure      404    {object}  models.ErrorResponse
// @Router       /cases/{id}/attachments [post]
func (h *Handler) UploadToCase(c *fiber.Ctx) error {
	caseID := c.Params("id")
	if _, err := uuid.Parse(caseID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var cs models.Case
	if err := h.db.First(&cs, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form required; use files[]")
	}
	files := form.File["files[]"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "files are required (use key: files[])")
	}
	if len(files) > 10 {
		return fiber.NewError(fiber.StatusBadRequest, "max 10 files allowed")
	}

	results := make([]fiber.Map, 0, len(files))

	for _, fh := range files {
		res := fiber.Map{
			"name": fh.Filename,
			"size": fh.Size,
		}

		if fh.Size <= 0 {
			res["error"] = "empty file"
			results = append(results, res)
			continue
		}
		if fh.Size > 10*1024*1024 {
			res["error"] = "max 10MB per file"
			results = append(results, res)
			continue
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}
		switch ct {
		case "application/pdf", "image/png":
			// ok
		default:
			res["error"] = "only PDF or PNG are allowed"
			results = append(results, res)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			res["error"] = "open failed"
			results = append(results, res)
			continue
		}
		defer f.Close()

		key := storage.MakeObjectKey(CaseModel, caseID, fh.Filename)

		// Without a configured store the metadata is still recorded (dev mode).
		if h.sb != nil {
			if err := h.sb.Upload(key, f, ct, fh.Size); err != nil {
				res["error"] = "upload failed"
				results = append(results, res)
				continue
			}
		}

		rec := models.Attachment{
			ResModel:     CaseModel,
			ResID:        cs.ID,
			Key:          key,
			Mime:         ct,
			Size:         int(fh.Size),
			OriginalName: fh.Filename,
		}
		if err := h.db.Create(&rec).Error; err != nil {
			res["error"] = "database error"
			results = append(results, res)
			continue
		}

		res["id"] = rec.ID
		res["key"] = rec.Key
		results = append(results, res)
	}

	// 201 even when some items failed; clients check the per-item "error" field.
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"results": results})
}

// List Case Attachments godoc
// @Summary      List documents attached to a case
// @Tags         attachments
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {array}   models.Attachment
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/attachments [get]
func (h *Handler) ListByCase(c *fiber.Ctx) error {
	caseID := c.Params("id")
	if _, err := uuid.Parse(caseID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var cnt int64
	if err := h.db.Model(&models.Case{}).Where("id = ?", caseID).Count(&cnt).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if cnt == 0 {
		return fiber.ErrNotFound
	}

	rows := []models.Attachment{}
	if err := h.db.Where("res_model = ? AND res_id = ?", CaseModel, caseID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(rows)
}

// Signed Download URL godoc
// @Summary      Get signed URL
// @Description  Obtain a short-lived signed URL for an attachment
// @Tags         attachments
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "attachment id (uuid)"
// @Success      200  {object}  map[string]any  "url, expires_in, now"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attachments/{id}/signed-url [get]
func (h *Handler) SignedDownloadURL(c *fiber.Ctx) error {
	var att models.Attachment
	if err := h.db.First(&att, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	// Without a configured store a placeholder URL is returned (dev mode).
	url := "signed://" + att.Key
	if h.sb != nil {
		var err error
		if url, err = h.sb.SignedURL(att.Key, 60); err != nil { // seconds
			return fiber.ErrInternalServerError
		}
	}
	return c.JSON(fiber.Map{"url": url, "expires_in": 60, "now": time.Now().UTC()})
}

// Delete Attachment godoc
// @Summary      Delete attachment
// @Tags         attachments
// @Security     BearerAuth
// @Param        id  path  string  true  "attachment id (uuid)"
// @Success      204
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attachments/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	var att models.Attachment
	if err := h.db.First(&att, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	// Blob removal is idempotent; metadata goes last.
	if h.sb != nil {
		if err := h.sb.Delete(att.Key); err != nil {
			return fiber.ErrInternalServerError
		}
	}
	if err := h.db.Delete(&att).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.SendStatus(fiber.StatusNoContent)
}
