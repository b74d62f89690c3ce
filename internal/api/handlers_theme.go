// handlers_theme.go - Theme preference handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/theme"
)

// ThemeHandlerImpl implements the ThemeHandler interface
type ThemeHandlerImpl struct {
	fallback      theme.Preference
	secureCookies bool
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(fallback theme.Preference, secureCookies bool) ThemeHandler {
	return &ThemeHandlerImpl{fallback: fallback, secureCookies: secureCookies}
}

type themeResponse struct {
	Theme theme.Preference `json:"theme"`
	Dark  bool             `json:"dark"`
}

// HandleGetTheme returns the preference resolved for this request
func (h *ThemeHandlerImpl) HandleGetTheme(c echo.Context) error {
	p := theme.FromRequest(c.Request(), h.fallback)
	return c.JSON(http.StatusOK, themeResponse{Theme: p, Dark: p.IsDark()})
}

// HandleToggleTheme flips the preference and persists it in the theme cookie
func (h *ThemeHandlerImpl) HandleToggleTheme(c echo.Context) error {
	p := theme.FromRequest(c.Request(), h.fallback).Toggle()
	c.SetCookie(theme.Cookie(p, h.secureCookies))
	return c.JSON(http.StatusOK, themeResponse{Theme: p, Dark: p.IsDark()})
}
