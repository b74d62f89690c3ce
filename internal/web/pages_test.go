package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	r, err := NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = r
	require.NoError(t, RegisterStaticRoutes(e))
	RegisterPageRoutes(e, NewPages(registry.Default(), theme.Light, 20, "1.2.3", nil))
	return e
}

func get(e *echo.Echo, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPages_Status(t *testing.T) {
	e := newTestEcho(t)

	tests := []struct {
		path   string
		status int
		want   []string
	}{
		{"/", http.StatusOK, []string{"Every PDF Tool You Need", "All in One Place", "Organize PDF", "Merge PDF", "Compress Image"}},
		{"/image-tools", http.StatusOK, []string{"Compress, resize, and convert images with ease", "Resize Image"}},
		{"/pricing", http.StatusOK, []string{"Most Popular", "Start Pro Trial"}},
		{"/merge-pdf", http.StatusOK, []string{"Merge PDF", `data-tool-id="merge-pdf"`, " multiple"}},
		{"/nope", http.StatusNotFound, []string{"Tool not found", "Back to all tools"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(e, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
			body := rec.Body.String()
			for _, s := range tt.want {
				assert.Contains(t, body, s)
			}
			assert.Contains(t, body, "Your files are secure and automatically deleted after processing")
		})
	}
}

func TestPages_HomeKeepsImageToolsOutOfSections(t *testing.T) {
	rec := get(newTestEcho(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="category-organize"`)
	assert.NotContains(t, body, `id="category-image"`)
}

func TestPages_HomeSections(t *testing.T) {
	rec := get(newTestEcho(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, s := range []string{"Cloud-based", "Forever free tools", "All PDF Tools at a Glance", "Trusted by Millions", "5M+", "30+"} {
		assert.Contains(t, body, s)
	}
	assert.Equal(t, len(registry.Default().Tools()), strings.Count(body, `class="glance-card"`))
}

func TestPages_PricingFAQ(t *testing.T) {
	rec := get(newTestEcho(t), "/pricing")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Frequently Asked Questions")
	for _, faq := range registry.Default().FAQ() {
		assert.Contains(t, body, faq.Question)
	}
	assert.Equal(t, 5, strings.Count(body, `class="faq-item"`))
	assert.Contains(t, body, "Get Started Free")
}

func TestPages_SettingsDefaults(t *testing.T) {
	e := newTestEcho(t)

	rec := get(e, "/split-pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="all" checked>`)
	assert.Equal(t, 1, strings.Count(body, " checked>"))

	rec = get(e, "/page-numbers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Bottom Center" selected>`)

	rec = get(e, "/compress-pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), " checked>")
}

func TestPages_ToolRouteIsCaseSensitive(t *testing.T) {
	rec := get(newTestEcho(t), "/Merge-PDF")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPages_ToolSettingsPanel(t *testing.T) {
	e := newTestEcho(t)

	rec := get(e, "/protect-pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="password"`)
	assert.Contains(t, body, "Confirm Password")
	assert.Contains(t, body, `data-settings="protect"`)

	rec = get(e, "/ocr-pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No options needed")
}

func TestPages_SingleFileTool(t *testing.T) {
	rec := get(newTestEcho(t), "/compress-pdf")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `data-multiple="false"`)
	assert.Contains(t, body, "Drop a file here")
	assert.Contains(t, body, "Accepted formats: .pdf")
}

func TestPages_StepIndicator(t *testing.T) {
	rec := get(newTestEcho(t), "/split-pdf")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `class="step active" data-step-index="0"`)
	assert.Contains(t, body, `class="step todo" data-step-index="3"`)
}

func TestPages_Theme(t *testing.T) {
	e := newTestEcho(t)

	rec := get(e, "/", &http.Cookie{Name: theme.CookieName, Value: "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="dark"`)

	rec = get(e, "/")
	assert.NotContains(t, rec.Body.String(), `class="dark"`)
	assert.Contains(t, rec.Body.String(), `data-theme="light"`)
}

func TestPages_NavMarksActiveLink(t *testing.T) {
	rec := get(newTestEcho(t), "/pricing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/pricing" class="active" aria-current="page">Pricing</a>`)
}

func TestStaticAssets_PageScript(t *testing.T) {
	rec := get(newTestEcho(t), "/static/app.js")
	require.Equal(t, http.StatusOK, rec.Code)

	script := rec.Body.String()
	assert.Contains(t, script, `self.path("/files"), { files: files }`)
	assert.NotContains(t, script, "FormData")
	assert.NotContains(t, script, "/files/upload")
	assert.Contains(t, script, "ev.persisted")
	assert.Contains(t, script, "before(stamp, this.last)")
}

func TestStaticAssets(t *testing.T) {
	e := newTestEcho(t)

	for _, path := range []string{"/static/app.js", "/static/app.css"} {
		rec := get(e, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Body.String(), path)
	}

	assert.Equal(t, http.StatusNotFound, get(e, "/static/missing.js").Code)
}
