// handlers_wizard.go - Tool wizard session handlers
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/upload"
	"github.com/pdftools/backend/internal/wizard"
	"github.com/vmihailenco/msgpack/v5"
)

// maxSettingsBody bounds a settings payload.
const maxSettingsBody = 64 * 1024

// streamTimeout ends an SSE progress stream that never completes.
const streamTimeout = 5 * time.Minute

// WizardHandlerImpl implements the WizardHandler interface
type WizardHandlerImpl struct {
	sessions SessionManager
	logger   observability.Logger
}

// NewWizardHandler creates a new wizard handler instance
func NewWizardHandler(sessions SessionManager, logger observability.Logger) WizardHandler {
	if logger == nil {
		logger = observability.Discard()
	}
	return &WizardHandlerImpl{
		sessions: sessions,
		logger:   logger.WithComponent("wizard-api"),
	}
}

type startWizardRequest struct {
	ToolID string `json:"toolId"`
}

func (r *startWizardRequest) validate() error {
	if r.ToolID == "" {
		return NewValidationError("toolId")
	}
	return nil
}

type addFilesRequest struct {
	Files []upload.Selection `json:"files"`
}

func (r *addFilesRequest) validate() error {
	for _, f := range r.Files {
		if f.Name == "" {
			return NewValidationError("files.name")
		}
		if f.Size < 0 {
			return NewValidationError("files.size")
		}
	}
	return nil
}

type filesResponse struct {
	Kept     int                   `json:"kept"`
	Dropped  int                   `json:"dropped"`
	Snapshot models.WizardSnapshot `json:"wizard"`
}

type removeFileResponse struct {
	Removed  bool                  `json:"removed"`
	Snapshot models.WizardSnapshot `json:"wizard"`
}

// HandleStartWizard opens a wizard session for a tool page visit
func (h *WizardHandlerImpl) HandleStartWizard(c echo.Context) error {
	var req startWizardRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	w, err := h.sessions.Start(req.ToolID)
	if err != nil {
		return fromDomainError(err, "")
	}

	h.logger.InfoContext(c.Request().Context(), "wizard started", "tool", req.ToolID)
	return c.JSON(http.StatusCreated, w.Snapshot())
}

// HandleGetWizard returns the current snapshot of a session
func (h *WizardHandlerImpl) HandleGetWizard(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

// HandleGetWizardMsgpack returns the snapshot in MessagePack format
func (h *WizardHandlerImpl) HandleGetWizardMsgpack(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(w.Snapshot())
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleEndWizard ends a visit and cancels any running simulation
func (h *WizardHandlerImpl) HandleEndWizard(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	if err := h.sessions.End(id); err != nil {
		return fromDomainError(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleKeepAlive extends session lifetime for an open tool page
func (h *WizardHandlerImpl) HandleKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	if ok := h.sessions.Touch(id); !ok {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleAddFiles adds file selections described by name and size. File
// contents never reach the server.
func (h *WizardHandlerImpl) HandleAddFiles(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}

	var req addFilesRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	return h.addFiles(c, w, req.Files)
}

func (h *WizardHandlerImpl) addFiles(c echo.Context, w *wizard.Wizard, batch []upload.Selection) error {
	kept, err := w.AddFiles(batch)
	if err != nil {
		return fromDomainError(err, w.ID())
	}
	return c.JSON(http.StatusOK, filesResponse{
		Kept:     kept,
		Dropped:  len(batch) - kept,
		Snapshot: w.Snapshot(),
	})
}

// HandleRemoveFile removes a file by position. An out-of-range index is not an error.
func (h *WizardHandlerImpl) HandleRemoveFile(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return NewValidationError("index")
	}

	removed, err := w.RemoveFile(index)
	if err != nil {
		return fromDomainError(err, w.ID())
	}
	return c.JSON(http.StatusOK, removeFileResponse{Removed: removed, Snapshot: w.Snapshot()})
}

// HandleClearFiles empties the file list
func (h *WizardHandlerImpl) HandleClearFiles(c echo.Context) error {
	return h.transition(c, (*wizard.Wizard).ClearFiles)
}

// HandleContinue moves from upload to settings
func (h *WizardHandlerImpl) HandleContinue(c echo.Context) error {
	return h.transition(c, (*wizard.Wizard).Continue)
}

// HandleBack returns from settings to upload
func (h *WizardHandlerImpl) HandleBack(c echo.Context) error {
	return h.transition(c, (*wizard.Wizard).Back)
}

// HandleProcess starts the simulated processing
func (h *WizardHandlerImpl) HandleProcess(c echo.Context) error {
	return h.transition(c, (*wizard.Wizard).Process)
}

// HandleReset starts over from the complete step
func (h *WizardHandlerImpl) HandleReset(c echo.Context) error {
	return h.transition(c, (*wizard.Wizard).Reset)
}

// HandleUpdateSettings merges a JSON object into the tool's settings
func (h *WizardHandlerImpl) HandleUpdateSettings(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSettingsBody))
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}
	if !json.Valid(raw) {
		return NewBadRequestError("invalid request body", errors.New("body is not valid JSON"))
	}

	if err := w.UpdateSettings(raw); err != nil {
		return fromDomainError(err, w.ID())
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

// HandleDownload returns the result attachment of a completed run
func (h *WizardHandlerImpl) HandleDownload(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}

	name, body, err := w.Download()
	if err != nil {
		return fromDomainError(err, w.ID())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", body)
}

// HandleProgressStream streams snapshots via SSE until the run completes
func (h *WizardHandlerImpl) HandleProgressStream(c echo.Context) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}

	// Subscribe before reading the first snapshot so no change is missed.
	updates, unsubscribe := w.Subscribe()
	defer unsubscribe()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	snap := w.Snapshot()
	h.sendSSEData(c, snap)
	if snap.Step == models.StepComplete {
		return nil
	}

	timeout := time.NewTimer(streamTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil
		case snap, ok := <-updates:
			if !ok {
				h.sendSSEError(c, "session ended")
				return nil
			}
			h.sessions.Touch(w.ID())
			h.sendSSEData(c, snap)
			if snap.Step == models.StepComplete {
				return nil
			}
		}
	}
}

func (h *WizardHandlerImpl) transition(c echo.Context, op func(*wizard.Wizard) error) error {
	w, err := h.lookup(c)
	if err != nil {
		return err
	}
	if err := op(w); err != nil {
		return fromDomainError(err, w.ID())
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

// lookup resolves :sessionId and marks the session as used.
func (h *WizardHandlerImpl) lookup(c echo.Context) (*wizard.Wizard, error) {
	id := c.Param("sessionId")
	if id == "" {
		return nil, NewValidationError("sessionId")
	}
	w, err := h.sessions.Get(id)
	if err != nil {
		return nil, fromDomainError(err, id)
	}
	// Eviction can close a wizard between Get and use.
	if w.Closed() {
		return nil, fromDomainError(wizard.ErrClosed, id)
	}
	h.sessions.Touch(id)
	return w, nil
}

func (h *WizardHandlerImpl) sendSSEData(c echo.Context, snap models.WizardSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Warn("failed to encode snapshot", "error", err)
		return
	}
	fmt.Fprintf(c.Response(), "data: %s\n\n", data)
	c.Response().Flush()
}

func (h *WizardHandlerImpl) sendSSEError(c echo.Context, message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	fmt.Fprintf(c.Response(), "event: error\ndata: %s\n\n", data)
	c.Response().Flush()
}
