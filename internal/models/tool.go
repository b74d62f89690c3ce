package models

// Tool is one catalog entry: a named document or image operation with its own route.
type Tool struct {
	ID            string `json:"id" yaml:"id" msgpack:"id"`
	Name          string `json:"name" yaml:"name" msgpack:"name"`
	Description   string `json:"description" yaml:"description" msgpack:"description"`
	Icon          string `json:"icon" yaml:"icon" msgpack:"icon"`
	Category      string `json:"category" yaml:"category" msgpack:"category"`
	CategoryColor string `json:"categoryColor" yaml:"categoryColor" msgpack:"categoryColor"`
	AcceptedFiles string `json:"acceptedFiles" yaml:"acceptedFiles" msgpack:"acceptedFiles"` // Comma-separated extensions, advisory only
	Route         string `json:"route" yaml:"route" msgpack:"route"`
}

// Category groups tools on the catalog pages.
type Category struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Color   string `json:"color" yaml:"color"`     // Gradient token for section headers
	BgColor string `json:"bgColor" yaml:"bgColor"` // Solid token for icons
}
