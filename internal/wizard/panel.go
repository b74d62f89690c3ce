package wizard

import "github.com/pdftools/backend/internal/models"

// FieldType selects how a settings field is rendered.
type FieldType string

const (
	FieldChoice   FieldType = "choice"   // button grid, one value per button
	FieldRadio    FieldType = "radio"    // radio list with descriptions
	FieldSelect   FieldType = "select"   // drop-down
	FieldText     FieldType = "text"
	FieldPassword FieldType = "password"
	FieldNumber   FieldType = "number"
	FieldRange    FieldType = "range"
)

// Option is one selectable value of a field.
type Option struct {
	Value       any    `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Field describes one input of a settings panel. Key is the JSON key the
// value is stored under; an empty key means the input is not stored.
type Field struct {
	Key         string    `json:"key,omitempty"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Options     []Option  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Default     any       `json:"default,omitempty"`
	Min         int       `json:"min,omitempty"`
	Max         int       `json:"max,omitempty"`
}

// Panel is the settings form of a tool.
type Panel struct {
	Kind   models.SettingsKind `json:"kind"`
	Fields []Field             `json:"fields"`
}

var panels = map[models.SettingsKind][]Field{
	models.SettingsCompress: {{
		Key:   "compression",
		Label: "Compression Level",
		Type:  FieldChoice,
		Options: []Option{
			{Value: 1, Label: "Low", Description: "High Quality"},
			{Value: 2, Label: "Medium"},
			{Value: 3, Label: "High", Description: "Small Size"},
		},
	}},
	models.SettingsSplit: {{
		Key:     "mode",
		Label:   "Split Options",
		Type:    FieldRadio,
		Default: "all",
		Options: []Option{
			{Value: "all", Label: "Split by every page", Description: "Each page becomes a separate PDF"},
			{Value: "range", Label: "Split by range", Description: "Define custom page ranges"},
			{Value: "size", Label: "Split by size", Description: "Split into files of specified size"},
		},
	}},
	models.SettingsProtect: {
		{Key: "password", Label: "Password", Type: FieldPassword, Placeholder: "Enter password"},
		{Label: "Confirm Password", Type: FieldPassword, Placeholder: "Confirm password"},
	},
	models.SettingsPageNumbers: {
		{
			Key:     "position",
			Label:   "Position",
			Type:    FieldSelect,
			Default: "Bottom Center",
			Options: []Option{
				{Value: "Bottom Center", Label: "Bottom Center"},
				{Value: "Bottom Left", Label: "Bottom Left"},
				{Value: "Bottom Right", Label: "Bottom Right"},
				{Value: "Top Center", Label: "Top Center"},
				{Value: "Top Left", Label: "Top Left"},
				{Value: "Top Right", Label: "Top Right"},
			},
		},
		{Key: "startPage", Label: "Start from page", Type: FieldNumber, Default: 1, Min: 1},
	},
	models.SettingsWatermark: {
		{Key: "watermark", Label: "Watermark Text", Type: FieldText, Placeholder: "CONFIDENTIAL"},
		{Key: "opacity", Label: "Opacity", Type: FieldRange, Default: 50, Min: 10, Max: 100},
	},
	models.SettingsRotate: {{
		Key:   "rotation",
		Label: "Rotation Angle",
		Type:  FieldChoice,
		Options: []Option{
			{Value: 90, Label: "90°"},
			{Value: 180, Label: "180°"},
			{Value: 270, Label: "270°"},
			{Value: 360, Label: "360°"},
		},
	}},
}

// PanelFor returns the settings form of a tool. Tools without options get
// a panel with no fields.
func PanelFor(toolID string) Panel {
	kind := models.SettingsKindFor(toolID)
	return Panel{Kind: kind, Fields: append([]Field(nil), panels[kind]...)}
}
