package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
	"docstore/internal/model"
	"docstore/internal/service"
)

// FileHandler serves the file lifecycle endpoints.
type FileHandler struct {
	files service.FileService
}

// NewFileHandler constructs a FileHandler.
func NewFileHandler(files service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload accepts a multipart upload (field name: file) with a visibility form
// value and stores it on behalf of the caller.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	}

	visibility := model.Visibility(c.FormValue("visibility", string(model.VisibilityPrivate)))
	if !visibility.Valid() {
		return writeError(c, fiber.StatusBadRequest, "INVALID_VISIBILITY", "visibility must be PRIVATE, DEPARTMENT or PUBLIC")
	}

	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	defer f.Close()

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}

	file, err := h.files.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size, visibility, middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

// List returns every file the caller may see.
func (h *FileHandler) List(c *fiber.Ctx) error {
	files, err := h.files.ListAccessible(c.UserContext(), middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(files)
}

// Get returns one file record by id.
func (h *FileHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	file, err := h.files.GetByID(c.UserContext(), id, middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(file)
}

// Download streams the file's content with its original filename.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	rc, file, err := h.files.Download(c.UserContext(), id, middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	return c.SendStream(rc, int(file.Size))
}

// Delete removes a file the caller is entitled to delete.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	if err := h.files.Delete(c.UserContext(), id, middleware.UserFromCtx(c)); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
