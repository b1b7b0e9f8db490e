package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/goalnet/pkg/buildinfo"
	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// Request / response types
// =============================================================================

type positionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type positionResponse struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type placeRequest struct {
	Count       int            `json:"count"`
	Placed      []layout.Point `json:"placed"`
	BaseSpacing float64        `json:"base_spacing,omitempty"`
}

type layoutResponse struct {
	RunID  string `json:"run_id"`
	Cached bool   `json:"cached"`
	*layout.Result
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Current()})
}

func (s *Server) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	g, err := s.runner.Load(r.Context(), userID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeErr(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid goal id %q", chi.URLParam(r, "id")))
		return
	}

	var req positionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, r, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "invalid position body"))
		return
	}
	if req.X == nil || req.Y == nil {
		s.writeErr(w, r, errors.New(errors.ErrCodeInvalidCoordinate, "x and y are required"))
		return
	}
	if err := errors.ValidateCoordinate(*req.X, *req.Y); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if s.runner.Store == nil {
		s.writeErr(w, r, errors.New(errors.ErrCodeInvalidOption, "no store configured"))
		return
	}

	if err := s.runner.Store.SavePosition(r.Context(), id, *req.X, *req.Y); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{ID: id, X: *req.X, Y: *req.Y})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	var opts pipeline.Options
	if err := decodeBody(r, &opts); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeErr(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout options"))
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if format != pipeline.FormatJSON {
		opts.Formats = []string{format}
	} else {
		opts.Formats = nil
	}
	opts.Logger = s.logger

	res, err := s.runner.Execute(r.Context(), userID, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	switch format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(res.Artifacts[format])
	case pipeline.FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write(res.Artifacts[format])
	default:
		writeJSON(w, http.StatusOK, layoutResponse{
			RunID:  res.RunID,
			Cached: res.CacheInfo.LayoutHit,
			Result: res.Layout,
		})
	}
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decodeBody(r, &req); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeErr(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid place body"))
		return
	}
	spacing := req.BaseSpacing
	if spacing == 0 {
		spacing = layout.DefaultBaseSpacing
	}
	if err := errors.ValidateSpacing(spacing); err != nil {
		s.writeErr(w, r, err)
		return
	}

	if req.Placed != nil {
		for _, p := range req.Placed {
			if err := errors.ValidateCoordinate(p.X, p.Y); err != nil {
				s.writeErr(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, layout.NewNodePosition(req.Placed, spacing))
		return
	}
	if req.Count < 0 {
		s.writeErr(w, r, errors.New(errors.ErrCodeInvalidInput, "count must not be negative, got %d", req.Count))
		return
	}
	writeJSON(w, http.StatusOK, layout.SpiralPosition(req.Count, spacing))
}

// =============================================================================
// Helpers
// =============================================================================

// userID resolves the requesting user from UserHeader or the default user.
func (s *Server) userID(r *http.Request) (int64, error) {
	raw := r.Header.Get(UserHeader)
	if raw == "" {
		if s.cfg.DefaultUser == 0 {
			return 0, errors.New(errors.ErrCodeInvalidInput, "missing %s header", UserHeader)
		}
		return s.cfg.DefaultUser, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s header %q", UserHeader, raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a standardised JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, code, errors.UserMessage(err))
}
