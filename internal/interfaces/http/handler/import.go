package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pension/backend/internal/application/catalog"
	"github.com/pension/backend/internal/domain/product"
	"github.com/pension/backend/internal/domain/shared"
	csvimport "github.com/pension/backend/internal/infrastructure/import"
	"github.com/pension/backend/internal/infrastructure/logger"
	"github.com/pension/backend/internal/interfaces/http/dto"
)

// importFormField is the multipart field carrying the uploaded table
const importFormField = "file"

// CatalogRebuilder replaces the catalog from raw rows
type CatalogRebuilder interface {
	Rebuild(ctx context.Context, rows []product.RawRow) (*catalog.BuildResult, error)
}

// CatalogSnapshotter persists the current catalog
type CatalogSnapshotter interface {
	SaveSnapshot(ctx context.Context) error
}

// CatalogImportHandler rebuilds the catalog from an uploaded CSV or XLSX table
type CatalogImportHandler struct {
	BaseHandler
	loader    *csvimport.Loader
	rebuilder CatalogRebuilder
	snapshots CatalogSnapshotter
	maxSize   int64
}

// NewCatalogImportHandler creates a new CatalogImportHandler.
// snapshots may be nil, in which case imports are not persisted.
func NewCatalogImportHandler(loader *csvimport.Loader, rebuilder CatalogRebuilder, snapshots CatalogSnapshotter) *CatalogImportHandler {
	return &CatalogImportHandler{
		loader:    loader,
		rebuilder: rebuilder,
		snapshots: snapshots,
		maxSize:   csvimport.DefaultMaxFileSize,
	}
}

// ImportCatalog parses the uploaded table and publishes it as the new catalog.
// The previous catalog stays in place when the upload cannot build one.
// POST /api/v1/catalog/import (multipart/form-data, field "file")
func (h *CatalogImportHandler) ImportCatalog(c *gin.Context) {
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile(importFormField)
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxSize {
		h.ErrorWithCode(c, dto.ErrCodeImportFileTooLarge, fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxSize))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}

	parsed, err := h.loader.Parse(header.Filename, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	built, err := h.rebuilder.Rebuild(ctx, parsed.RawRows())
	if errors.Is(err, shared.ErrCatalogEmpty) {
		h.ErrorWithCode(c, dto.ErrCodeImportNoRows, "no row of the file could be built into a product")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.snapshots != nil {
		if err := h.snapshots.SaveSnapshot(ctx); err != nil {
			logger.GetGinLogger(c).Warn("catalog snapshot not saved after import", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCatalogImportResponse(parsed, built)))
}
