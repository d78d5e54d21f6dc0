package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"chat-analyzer/analyzer"
	"chat-analyzer/middleware"
	"chat-analyzer/model"
	"chat-analyzer/upload"
	"chat-analyzer/view"

	"github.com/rs/zerolog/log"
)

const (
	routeAnalyzer   = "/analyzer"
	multipartMemory = 32 << 20
)

var errNoWorkspace = errors.New("no analysis workspace for this session")

// AnalyzerHandler serves the dashboard and its form actions. Every action
// redirects back to GET /analyzer, which renders the controller snapshot.
type AnalyzerHandler struct {
	workspaces *analyzer.Registry
	renderer   *view.Renderer
	rules      upload.Rules
}

func NewAnalyzerHandler(workspaces *analyzer.Registry, renderer *view.Renderer, rules upload.Rules) *AnalyzerHandler {
	if rules.Extension == "" {
		rules.Extension = upload.DefaultExtension
	}
	return &AnalyzerHandler{workspaces: workspaces, renderer: renderer, rules: rules}
}

// Root handles GET /
func (h *AnalyzerHandler) Root(w http.ResponseWriter, r *http.Request) {
	seeOther(w, r, routeAnalyzer)
}

// Page handles GET /analyzer
func (h *AnalyzerHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.workspace(r)
	if !ok {
		SendJSONError(w, http.StatusUnauthorized, errNoWorkspace, "")
		return
	}
	h.renderer.Render(w, http.StatusOK, view.PageAnalyzer, view.AnalyzerPage{
		Dashboard:   view.NewDashboard(ctrl.Snapshot()),
		MaxUploadMB: int(h.rules.MaxBytes >> 20),
		Extension:   h.rules.Extension,
	})
}

// Upload handles POST /analyzer/upload (multipart field "file").
func (h *AnalyzerHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctrl, token, ok := h.workspace(r)
	if !ok {
		SendJSONError(w, http.StatusUnauthorized, errNoWorkspace, "")
		return
	}
	defer seeOther(w, r, routeAnalyzer)

	file, err := h.readUpload(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("Unreadable upload")
		ctrl.SetError(upload.MsgWrongFormat)
		return
	}

	zone := upload.NewDropzone(h.rules)
	if err := zone.Drop(file); err != nil {
		log.Info().Err(err).Str("file", file.Name).Msg("Upload rejected before analysis")
		ctrl.SetError(zone.ErrorMessage())
		return
	}
	selected, err := zone.Submit()
	if err != nil {
		ctrl.SetError(upload.MsgWrongFormat)
		return
	}

	// The controller keeps the error message for the next page render.
	_ = ctrl.Analyze(r.Context(), selected)
	h.workspaces.Touch(token, ctrl)
}

// ChangeUser handles POST /analyzer/user (form field "user").
func (h *AnalyzerHandler) ChangeUser(w http.ResponseWriter, r *http.Request) {
	ctrl, token, ok := h.workspace(r)
	if !ok {
		SendJSONError(w, http.StatusUnauthorized, errNoWorkspace, "")
		return
	}

	user := r.PostFormValue("user")
	if user == "" {
		user = model.OverallUser
	}
	// A failed refetch only leaves a notice; the previous results stay.
	_ = ctrl.ChangeUser(r.Context(), user)
	h.workspaces.Touch(token, ctrl)
	seeOther(w, r, routeAnalyzer)
}

// Reset handles POST /analyzer/reset
func (h *AnalyzerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctrl, token, ok := h.workspace(r)
	if !ok {
		SendJSONError(w, http.StatusUnauthorized, errNoWorkspace, "")
		return
	}
	ctrl.Reset()
	h.workspaces.Touch(token, ctrl)
	seeOther(w, r, routeAnalyzer)
}

// Snapshot handles GET /api/analysis
func (h *AnalyzerHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.workspace(r)
	if !ok {
		SendJSONError(w, http.StatusUnauthorized, errNoWorkspace, "Please sign in first")
		return
	}
	SendJSONSuccess(w, http.StatusOK, ctrl.Snapshot())
}

func (h *AnalyzerHandler) workspace(r *http.Request) (*analyzer.Controller, string, bool) {
	session, ok := middleware.SessionFrom(r)
	if !ok {
		return nil, "", false
	}
	token, ok := session.Token()
	if !ok {
		return nil, "", false
	}
	return h.workspaces.For(token), token, true
}

// readUpload reads the multipart file field. Bodies over the limit are cut
// off at one byte past it so Validate can report the size.
func (h *AnalyzerHandler) readUpload(w http.ResponseWriter, r *http.Request) (model.UploadedFile, error) {
	if h.rules.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.rules.MaxBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return model.UploadedFile{}, err
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return model.UploadedFile{}, err
	}
	defer f.Close()

	var src io.Reader = f
	if h.rules.MaxBytes > 0 {
		src = io.LimitReader(f, h.rules.MaxBytes+1)
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return model.UploadedFile{}, err
	}

	return model.UploadedFile{
		Name:        hdr.Filename,
		Size:        hdr.Size,
		ContentType: strings.TrimSpace(hdr.Header.Get("Content-Type")),
		Content:     content,
	}, nil
}
