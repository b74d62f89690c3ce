package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/pdftools/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	reg := Default()

	assert.Len(t, reg.Categories(), 8)
	assert.Len(t, reg.Tools(), 30)
	assert.Len(t, reg.Plans(), 3)
	require.Len(t, reg.FAQ(), 5)
	assert.Equal(t, "Can I cancel my subscription anytime?", reg.FAQ()[0].Question)

	first := reg.Tools()[0]
	assert.Equal(t, "merge-pdf", first.ID)
	assert.Equal(t, "/merge-pdf", first.Route)
	assert.Equal(t, ".pdf", first.AcceptedFiles)
}

func TestToolByID(t *testing.T) {
	reg := Default()

	for _, tool := range reg.Tools() {
		got, ok := reg.ToolByID(tool.ID)
		require.True(t, ok, tool.ID)
		assert.Equal(t, tool.ID, got.ID)
	}

	for _, id := range []string{"", "unknown", "MERGE-PDF", "/merge-pdf"} {
		_, ok := reg.ToolByID(id)
		assert.False(t, ok, "expected %q to be missing", id)
	}
}

func TestLookup_NotFound(t *testing.T) {
	_, err := Default().Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestToolByRoute(t *testing.T) {
	reg := Default()

	tool, ok := reg.ToolByRoute("/compress-image")
	require.True(t, ok)
	assert.Equal(t, "compress-image", tool.ID)

	_, ok = reg.ToolByRoute("/pricing")
	assert.False(t, ok)
}

func TestToolsByCategory(t *testing.T) {
	reg := Default()

	tests := []struct {
		category string
		want     []string
	}{
		{"organize", []string{"merge-pdf", "split-pdf", "remove-pages", "extract-pages"}},
		{"compare", []string{"compare-pdf"}},
		{"image", []string{"compress-image", "resize-image", "jpg-to-png", "png-to-jpg"}},
		{"missing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := reg.ToolsByCategory(tt.category)
			ids := make([]string, 0, len(got))
			for _, tool := range got {
				assert.Equal(t, tt.category, tool.Category)
				ids = append(ids, tool.ID)
			}
			assert.Equal(t, tt.want, ids)

			// Idempotent and independent of the caller mutating the result.
			if len(got) > 0 {
				got[0].ID = "mutated"
			}
			again := reg.ToolsByCategory(tt.category)
			againIDs := make([]string, 0, len(again))
			for _, tool := range again {
				againIDs = append(againIDs, tool.ID)
			}
			assert.Equal(t, tt.want, againIDs)
		})
	}
}

func TestToolsByCategory_PreservesRegistryOrder(t *testing.T) {
	reg := Default()
	all := reg.Tools()

	for _, c := range reg.Categories() {
		pos := -1
		for _, tool := range reg.ToolsByCategory(c.ID) {
			idx := indexOf(all, tool.ID)
			assert.Greater(t, idx, pos, "tool %s out of order", tool.ID)
			pos = idx
		}
	}
}

func TestCatalogCategories(t *testing.T) {
	cats := Default().CatalogCategories()
	assert.Len(t, cats, 7)
	for _, c := range cats {
		assert.NotEqual(t, ImageCategory, c.ID)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "tools: [",
			wantErr: "parsing catalog",
		},
		{
			name: "unknown category",
			yaml: `
categories:
  - id: organize
tools:
  - id: merge-pdf
    category: nope
    route: /merge-pdf
`,
			wantErr: "unknown category",
		},
		{
			name: "duplicate tool",
			yaml: `
categories:
  - id: organize
tools:
  - id: merge-pdf
    category: organize
    route: /merge-pdf
  - id: merge-pdf
    category: organize
    route: /merge-pdf
`,
			wantErr: "duplicate tool",
		},
		{
			name: "route mismatch",
			yaml: `
categories:
  - id: organize
tools:
  - id: merge-pdf
    category: organize
    route: /merge
`,
			wantErr: "route",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, Extensions(".jpg, .jpeg,.png"))
	assert.Empty(t, Extensions(""))
}

func indexOf(tools []models.Tool, id string) int {
	for i, tool := range tools {
		if tool.ID == id {
			return i
		}
	}
	return -1
}
