package models

// SettingsKind tags the variant of a tool's settings payload.
type SettingsKind string

const (
	SettingsNone        SettingsKind = "none"
	SettingsCompress    SettingsKind = "compress"
	SettingsSplit       SettingsKind = "split"
	SettingsProtect     SettingsKind = "protect"
	SettingsPageNumbers SettingsKind = "page-numbers"
	SettingsWatermark   SettingsKind = "watermark"
	SettingsRotate      SettingsKind = "rotate"
)

// Settings is the tool-specific options payload. Values are held for
// display only and never applied to any file.
type Settings interface {
	Kind() SettingsKind
}

// NoSettings is used by tools without an options panel.
type NoSettings struct{}

// CompressSettings holds the compression level: 1 low, 2 medium, 3 high.
type CompressSettings struct {
	Compression int `json:"compression,omitempty" msgpack:"compression,omitempty"`
}

// SplitSettings holds the split mode: "all", "range" or "size".
type SplitSettings struct {
	Mode string `json:"mode,omitempty" msgpack:"mode,omitempty"`
}

// ProtectSettings holds the password typed into the protect panel.
type ProtectSettings struct {
	Password string `json:"password,omitempty" msgpack:"password,omitempty"`
}

// PageNumberSettings holds the page number placement.
type PageNumberSettings struct {
	Position  string `json:"position,omitempty" msgpack:"position,omitempty"`
	StartPage int    `json:"startPage,omitempty" msgpack:"startPage,omitempty"`
}

// WatermarkSettings holds the watermark text and opacity percentage.
type WatermarkSettings struct {
	Watermark string `json:"watermark,omitempty" msgpack:"watermark,omitempty"`
	Opacity   int    `json:"opacity,omitempty" msgpack:"opacity,omitempty"`
}

// RotateSettings holds the rotation angle in degrees.
type RotateSettings struct {
	Rotation int `json:"rotation,omitempty" msgpack:"rotation,omitempty"`
}

func (NoSettings) Kind() SettingsKind         { return SettingsNone }
func (CompressSettings) Kind() SettingsKind   { return SettingsCompress }
func (SplitSettings) Kind() SettingsKind      { return SettingsSplit }
func (ProtectSettings) Kind() SettingsKind    { return SettingsProtect }
func (PageNumberSettings) Kind() SettingsKind { return SettingsPageNumbers }
func (WatermarkSettings) Kind() SettingsKind  { return SettingsWatermark }
func (RotateSettings) Kind() SettingsKind     { return SettingsRotate }

// settingsByTool maps tool ids to their settings variant. Tools not
// listed have no options.
var settingsByTool = map[string]SettingsKind{
	"compress-pdf": SettingsCompress,
	"split-pdf":    SettingsSplit,
	"protect-pdf":  SettingsProtect,
	"page-numbers": SettingsPageNumbers,
	"watermark":    SettingsWatermark,
	"rotate-pdf":   SettingsRotate,
}

// SettingsKindFor returns the settings variant used by a tool.
func SettingsKindFor(toolID string) SettingsKind {
	if kind, ok := settingsByTool[toolID]; ok {
		return kind
	}
	return SettingsNone
}

// NewSettings returns an empty payload of the given kind as a pointer,
// ready to be decoded into.
func NewSettings(kind SettingsKind) Settings {
	switch kind {
	case SettingsCompress:
		return &CompressSettings{}
	case SettingsSplit:
		return &SplitSettings{}
	case SettingsProtect:
		return &ProtectSettings{}
	case SettingsPageNumbers:
		return &PageNumberSettings{}
	case SettingsWatermark:
		return &WatermarkSettings{}
	case SettingsRotate:
		return &RotateSettings{}
	}
	return &NoSettings{}
}
