package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-extensions/internal/extension/labels"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// mixinSummary is one entry of the mixin list.
type mixinSummary struct {
	ID         string          `json:"id"`
	NativeID   string          `json:"native_id"`
	Name       string          `json:"name"`
	Group      string          `json:"group"`
	Interfaces []sdk.Interface `json:"interfaces"`
}

type settingsResponse struct {
	MixinID  string        `json:"mixin_id"`
	Settings []sdk.Setting `json:"settings"`
}

type putSettingRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// handleListMixins returns every active mixin, sorted by id.
func (s *Server) handleListMixins(w http.ResponseWriter, _ *http.Request) {
	ids := s.provider.IDs()
	out := make([]mixinSummary, 0, len(ids))
	for _, id := range ids {
		m, ok := s.provider.Mixin(id)
		if !ok {
			// Detached between IDs and Mixin.
			continue
		}
		state := m.State()
		out = append(out, mixinSummary{
			ID:         m.ID(),
			NativeID:   state.NativeID,
			Name:       m.Name(),
			Group:      m.Group(),
			Interfaces: state.Interfaces,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mixins": out,
		"count":  len(out),
	})
}

// handleGetSettings returns the merged settings of one mixin. Failing
// sources show up as placeholders, never as an error response.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.provider.Mixin(id)
	if !ok {
		writeNotFound(w, "mixin not found")
		return
	}

	settings, err := m.GetSettings(r.Context())
	if err != nil {
		s.logger.Error("reading settings failed", "mixin_id", id, "error", err)
		writeInternalError(w, "failed to read settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{MixinID: id, Settings: settings})
}

// handlePutSetting writes one setting and returns the refreshed settings.
func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.provider.Mixin(id)
	if !ok {
		writeNotFound(w, "mixin not found")
		return
	}

	var req putSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Key == "" {
		writeBadRequest(w, "key is required")
		return
	}

	if err := m.PutSetting(r.Context(), req.Key, req.Value); err != nil {
		switch {
		case errors.Is(err, labels.ErrUnknownSetting),
			errors.Is(err, labels.ErrInvalidValue),
			errors.Is(err, sdk.ErrSettingsUnsupported):
			writeValidationError(w, err.Error())
		default:
			s.logger.Error("writing setting failed",
				"mixin_id", id,
				"key", req.Key,
				"error", err,
			)
			writeInternalError(w, "failed to write setting")
		}
		return
	}

	if s.recorder != nil {
		s.recorder.RecordSettingChange(id, req.Key)
	}
	s.logger.Info("setting written",
		"mixin_id", id,
		"key", req.Key,
		"subject", subjectFromContext(r.Context()),
	)

	settings, err := m.GetSettings(r.Context())
	if err != nil {
		writeInternalError(w, "failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{MixinID: id, Settings: settings})
}
