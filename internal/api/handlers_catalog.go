// handlers_catalog.go - Tool registry handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/upload"
	"github.com/pdftools/backend/internal/wizard"
)

// CatalogHandlerImpl implements the CatalogHandler interface
type CatalogHandlerImpl struct {
	registry *registry.Registry
	maxFiles int
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(reg *registry.Registry, maxFiles int) CatalogHandler {
	return &CatalogHandlerImpl{registry: reg, maxFiles: maxFiles}
}

type toolDetailResponse struct {
	models.Tool
	Multiple   bool         `json:"multiple"`
	MaxFiles   int          `json:"maxFiles"`
	Extensions []string     `json:"extensions"`
	Settings   wizard.Panel `json:"settings"`
}

// HandleListTools returns every tool, or the tools of ?category=
func (h *CatalogHandlerImpl) HandleListTools(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		return c.JSON(http.StatusOK, h.registry.Tools())
	}
	if _, ok := h.registry.Category(category); !ok {
		return NewNotFoundError("category", category)
	}
	return c.JSON(http.StatusOK, h.registry.ToolsByCategory(category))
}

// HandleGetTool returns one tool with its upload limits and settings panel
func (h *CatalogHandlerImpl) HandleGetTool(c echo.Context) error {
	id := c.Param("id")
	tool, ok := h.registry.ToolByID(id)
	if !ok {
		return NewNotFoundError("tool", id)
	}

	cfg := upload.ConfigForTool(tool, h.maxFiles)
	if !cfg.Multiple {
		cfg.MaxFiles = 1
	}
	return c.JSON(http.StatusOK, toolDetailResponse{
		Tool:       tool,
		Multiple:   cfg.Multiple,
		MaxFiles:   cfg.MaxFiles,
		Extensions: cfg.Extensions(),
		Settings:   wizard.PanelFor(tool.ID),
	})
}

// HandleListCategories returns the categories in display order
func (h *CatalogHandlerImpl) HandleListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Categories())
}

// HandleCategoryTools returns the tools of one category
func (h *CatalogHandlerImpl) HandleCategoryTools(c echo.Context) error {
	id := c.Param("id")
	category, ok := h.registry.Category(id)
	if !ok {
		return NewNotFoundError("category", id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category": category,
		"tools":    h.registry.ToolsByCategory(id),
	})
}

// HandleListPlans returns the pricing plans
func (h *CatalogHandlerImpl) HandleListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Plans())
}
