package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/session"
	"github.com/pdftools/backend/internal/theme"
	"github.com/pdftools/backend/internal/wizard"
	"github.com/stretchr/testify/require"
)

// newTestSessions returns a manager whose simulations finish in a few milliseconds.
func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	m := session.NewManager(registry.Default(), session.Options{
		Wizard: wizard.Options{
			Simulation: wizard.SimulationConfig{
				Interval:        time.Millisecond,
				CompletionDelay: time.Millisecond,
			},
		},
	})
	t.Cleanup(m.Shutdown)
	return m
}

func newTestServer(t *testing.T, limit RateLimitConfig) (*echo.Echo, *session.Manager) {
	t.Helper()
	sessions := newTestSessions(t)

	e := echo.New()
	apiGroup := e.Group("/api")
	SetupMiddleware(e, apiGroup, limit, nil, false)
	RegisterRoutes(apiGroup, NewHandlers(&Dependencies{
		Registry:     registry.Default(),
		Sessions:     sessions,
		Version:      "test",
		DefaultTheme: theme.Light,
	}))
	return e, sessions
}

func doRequest(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			raw, _ = json.Marshal(b)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr), rec.Body.String())
	return apiErr
}

// snapshotJSON mirrors models.WizardSnapshot with settings left raw.
type snapshotJSON struct {
	SessionID    string              `json:"sessionId"`
	ToolID       string              `json:"toolId"`
	Step         models.Step         `json:"step"`
	Progress     float64             `json:"progress"`
	Files        []models.FileHandle `json:"files"`
	Multiple     bool                `json:"multiple"`
	MaxFiles     int                 `json:"maxFiles"`
	SettingsKind models.SettingsKind `json:"settingsKind"`
	Settings     json.RawMessage     `json:"settings"`
	DownloadName string              `json:"downloadName"`
}

func decodeSnapshot(t *testing.T, data []byte) snapshotJSON {
	t.Helper()
	var snap snapshotJSON
	require.NoError(t, json.Unmarshal(data, &snap), string(data))
	return snap
}

func startWizard(t *testing.T, e *echo.Echo, toolID string) snapshotJSON {
	t.Helper()
	rec := doRequest(e, http.MethodPost, "/api/wizard", map[string]string{"toolId": toolID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeSnapshot(t, rec.Body.Bytes())
}
