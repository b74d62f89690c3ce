package models

// Plan is a pricing tier shown on the pricing page.
type Plan struct {
	Name        string        `json:"name" yaml:"name"`
	Icon        string        `json:"icon" yaml:"icon"`
	Price       string        `json:"price" yaml:"price"`
	Period      string        `json:"period" yaml:"period"`
	Description string        `json:"description" yaml:"description"`
	Features    []PlanFeature `json:"features" yaml:"features"`
	CTA         string        `json:"cta" yaml:"cta"`
	Popular     bool          `json:"popular" yaml:"popular"`
}

// PlanFeature is one line of a plan's feature list.
type PlanFeature struct {
	Text     string `json:"text" yaml:"text"`
	Included bool   `json:"included" yaml:"included"`
}

// FAQ is one question shown under the pricing plans.
type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}
