// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/wizard"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// CatalogHandler serves the static tool registry
type CatalogHandler interface {
	HandleListTools(c echo.Context) error
	HandleGetTool(c echo.Context) error
	HandleListCategories(c echo.Context) error
	HandleCategoryTools(c echo.Context) error
	HandleListPlans(c echo.Context) error
}

// ThemeHandler reads and flips the colour scheme preference
type ThemeHandler interface {
	HandleGetTheme(c echo.Context) error
	HandleToggleTheme(c echo.Context) error
}

// WizardHandler drives tool-page sessions
type WizardHandler interface {
	HandleStartWizard(c echo.Context) error
	HandleGetWizard(c echo.Context) error
	HandleGetWizardMsgpack(c echo.Context) error
	HandleEndWizard(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
	HandleAddFiles(c echo.Context) error
	HandleRemoveFile(c echo.Context) error
	HandleClearFiles(c echo.Context) error
	HandleContinue(c echo.Context) error
	HandleBack(c echo.Context) error
	HandleProcess(c echo.Context) error
	HandleReset(c echo.Context) error
	HandleUpdateSettings(c echo.Context) error
	HandleDownload(c echo.Context) error
	HandleProgressStream(c echo.Context) error
}

// StreamHandler pushes wizard snapshots over WebSocket
type StreamHandler interface {
	HandleWizardStream(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Start(toolID string) (*wizard.Wizard, error)
	Get(id string) (*wizard.Wizard, error)
	Touch(id string) bool
	End(id string) error
	Len() int
}
