package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/theme"
	"github.com/pdftools/backend/internal/upload"
	"github.com/pdftools/backend/internal/wizard"
)

type navLink struct {
	Label  string
	Href   string
	Active bool
}

// layoutData is embedded in every page view.
type layoutData struct {
	Title   string
	Path    string
	Theme   theme.Preference
	Dark    bool
	Nav     []navLink
	Version string
}

type categorySection struct {
	Category models.Category
	Tools    []models.Tool
}

type homeView struct {
	layoutData
	Sections   []categorySection
	ImageTools []models.Tool
	AllTools   []models.Tool
}

type imageToolsView struct {
	layoutData
	Tools []models.Tool
}

type pricingView struct {
	layoutData
	Plans []models.Plan
	FAQ   []models.FAQ
}

type toolView struct {
	layoutData
	Tool       models.Tool
	Category   models.Category
	Multiple   bool
	MaxFiles   int
	Extensions []string
	Panel      wizard.Panel
	Steps      []string
	Step       models.Step
}

type notFoundView struct {
	layoutData
}

// Pages renders the HTML routes.
type Pages struct {
	registry     *registry.Registry
	defaultTheme theme.Preference
	maxFiles     int
	version      string
	logger       observability.Logger
}

// NewPages creates the page handlers.
func NewPages(reg *registry.Registry, defaultTheme theme.Preference, maxFiles int, version string, logger observability.Logger) *Pages {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Pages{
		registry:     reg,
		defaultTheme: defaultTheme,
		maxFiles:     maxFiles,
		version:      version,
		logger:       logger.WithComponent("pages"),
	}
}

// RegisterPageRoutes registers the HTML routes. Register API and static
// routes first; /:toolId matches any single segment.
func RegisterPageRoutes(e *echo.Echo, p *Pages) {
	e.GET("/", p.HandleHome)
	e.GET("/image-tools", p.HandleImageTools)
	e.GET("/pricing", p.HandlePricing)
	e.GET("/:toolId", p.HandleTool)
}

// HandleHome renders the catalog of PDF tools grouped by category.
func (p *Pages) HandleHome(c echo.Context) error {
	cats := p.registry.CatalogCategories()
	sections := make([]categorySection, 0, len(cats))
	for _, cat := range cats {
		sections = append(sections, categorySection{Category: cat, Tools: p.registry.ToolsByCategory(cat.ID)})
	}
	return c.Render(http.StatusOK, PageHome, homeView{
		layoutData: p.layout(c, "Every PDF Tool You Need"),
		Sections:   sections,
		ImageTools: p.registry.ToolsByCategory(registry.ImageCategory),
		AllTools:   p.registry.Tools(),
	})
}

// HandleImageTools renders the image category page.
func (p *Pages) HandleImageTools(c echo.Context) error {
	return c.Render(http.StatusOK, PageImageTools, imageToolsView{
		layoutData: p.layout(c, "Image Tools"),
		Tools:      p.registry.ToolsByCategory(registry.ImageCategory),
	})
}

// HandlePricing renders the pricing plans.
func (p *Pages) HandlePricing(c echo.Context) error {
	return c.Render(http.StatusOK, PagePricing, pricingView{
		layoutData: p.layout(c, "Pricing"),
		Plans:      p.registry.Plans(),
		FAQ:        p.registry.FAQ(),
	})
}

// HandleTool renders a tool page. Unknown tools get the not-found page.
func (p *Pages) HandleTool(c echo.Context) error {
	tool, ok := p.registry.ToolByRoute("/" + c.Param("toolId"))
	if !ok {
		p.logger.Debug("unknown tool page", "path", c.Request().URL.Path)
		return c.Render(http.StatusNotFound, PageNotFound, notFoundView{
			layoutData: p.layout(c, "Tool not found"),
		})
	}

	category, _ := p.registry.Category(tool.Category)
	files := upload.NewList(upload.ConfigForTool(tool, p.maxFiles)).Config()
	return c.Render(http.StatusOK, PageTool, toolView{
		layoutData: p.layout(c, tool.Name),
		Tool:       tool,
		Category:   category,
		Multiple:   files.Multiple,
		MaxFiles:   files.MaxFiles,
		Extensions: files.Extensions(),
		Panel:      wizard.PanelFor(tool.ID),
		Steps:      models.StepLabels,
		Step:       models.StepUpload,
	})
}

func (p *Pages) layout(c echo.Context, title string) layoutData {
	pref := theme.FromRequest(c.Request(), p.defaultTheme)
	path := c.Request().URL.Path
	return layoutData{
		Title:   title,
		Path:    path,
		Theme:   pref,
		Dark:    pref.IsDark(),
		Version: p.version,
		Nav: []navLink{
			{Label: "All Tools", Href: "/", Active: path == "/"},
			{Label: "Image Tools", Href: "/image-tools", Active: path == "/image-tools"},
			{Label: "Pricing", Href: "/pricing", Active: path == "/pricing"},
		},
	}
}
