package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdftools/backend/internal/config"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 31)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "merge-pdf"))
}

func TestToolsCommand_CategoryJSON(t *testing.T) {
	out, err := execute(t, "tools", "--category", "image", "--json")
	require.NoError(t, err)

	var tools []models.Tool
	require.NoError(t, json.Unmarshal([]byte(out), &tools))
	require.Len(t, tools, 4)
	for _, tool := range tools {
		assert.Equal(t, "image", tool.Category)
	}
}

func TestToolsCommand_UnknownCategory(t *testing.T) {
	_, err := execute(t, "tools", "--category", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pdftools "+Version)
}

func TestNewServer_Routes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Advanced.EnableRequestLogging = false

	e, sessions, err := newServer(cfg, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(sessions.Shutdown)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/tools", "", http.StatusOK},
		{http.MethodPost, "/api/wizard", `{"toolId":"merge-pdf"}`, http.StatusCreated},
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/pricing", "", http.StatusOK},
		{http.MethodGet, "/merge-pdf", "", http.StatusOK},
		{http.MethodGet, "/not-a-tool", "", http.StatusNotFound},
		{http.MethodGet, "/static/app.css", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, 1, sessions.Len())
}

func TestNewServer_FileSelectionIgnoresBodyLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Advanced.EnableRequestLogging = false

	e, sessions, err := newServer(cfg, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(sessions.Shutdown)

	w, err := sessions.Start("compress-pdf")
	require.NoError(t, err)

	// 12 MB is past the 10M body limit; only the name and size are sent.
	body := `{"files":[{"name":"scan.pdf","size":12582912}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/wizard/"+w.ID()+"/files", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := w.Snapshot()
	require.Len(t, snap.Files, 1)
	assert.Equal(t, int64(12582912), snap.Files[0].Size)
}

func TestNewHTTPServer(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.Config{Level: "info", Format: "json", Output: &buf})

	s := newHTTPServer(config.DefaultConfig(), logger)
	assert.Equal(t, "0.0.0.0:8090", s.Addr)
	assert.Equal(t, 30*time.Second, s.ReadTimeout)
	assert.Equal(t, 120*time.Second, s.IdleTimeout)

	require.NotNil(t, s.ErrorLog)
	s.ErrorLog.Print("tls handshake error")
	assert.Contains(t, buf.String(), "tls handshake error")
	assert.Contains(t, buf.String(), `"component":"http"`)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins(""))
	assert.Equal(t, []string{"*"}, splitOrigins(" , "))
	assert.Equal(t, []string{"http://a", "http://b"}, splitOrigins("http://a, http://b"))
}
