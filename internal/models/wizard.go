package models

import "time"

// Step is the current stage of a tool wizard.
type Step string

const (
	StepUpload     Step = "upload"
	StepSettings   Step = "settings"
	StepProcessing Step = "processing"
	StepComplete   Step = "complete"
)

// StepLabels are the captions of the step indicator, in order.
var StepLabels = []string{"Upload", "Settings", "Process", "Download"}

// Index returns the position of the step in the indicator, or -1.
func (s Step) Index() int {
	switch s {
	case StepUpload:
		return 0
	case StepSettings:
		return 1
	case StepProcessing:
		return 2
	case StepComplete:
		return 3
	}
	return -1
}

// WizardSnapshot is a point-in-time copy of a wizard's state.
type WizardSnapshot struct {
	SessionID     string       `json:"sessionId" msgpack:"sessionId"`
	ToolID        string       `json:"toolId" msgpack:"toolId"`
	Step          Step         `json:"step" msgpack:"step"`
	Progress      float64      `json:"progress" msgpack:"progress"` // 0-100, clamped for display
	Files         []FileHandle `json:"files" msgpack:"files"`
	Multiple      bool         `json:"multiple" msgpack:"multiple"`
	MaxFiles      int          `json:"maxFiles" msgpack:"maxFiles"`
	AcceptedFiles string       `json:"acceptedFiles" msgpack:"acceptedFiles"`
	SettingsKind  SettingsKind `json:"settingsKind" msgpack:"settingsKind"`
	Settings      Settings     `json:"settings" msgpack:"settings"`
	DownloadName  string       `json:"downloadName,omitempty" msgpack:"downloadName,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt" msgpack:"updatedAt"`
}
