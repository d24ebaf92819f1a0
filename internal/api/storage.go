package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StorageAdmin lists and clears persisted mixin storage.
type StorageAdmin interface {
	NativeIDs(ctx context.Context) ([]string, error)
	Purge(ctx context.Context, nativeID string) (int64, error)
}

// handleListStorage returns every storage native id that holds data,
// including ids of devices that no longer exist.
func (s *Server) handleListStorage(w http.ResponseWriter, r *http.Request) {
	ids, err := s.storage.NativeIDs(r.Context())
	if err != nil {
		s.logger.Error("listing storage failed", "error", err)
		writeInternalError(w, "failed to list storage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"native_ids": ids,
		"count":      len(ids),
	})
}

// handlePurgeStorage deletes everything stored for one native id.
func (s *Server) handlePurgeStorage(w http.ResponseWriter, r *http.Request) {
	nativeID := chi.URLParam(r, "nativeID")

	removed, err := s.storage.Purge(r.Context(), nativeID)
	if err != nil {
		s.logger.Error("purging storage failed", "native_id", nativeID, "error", err)
		writeInternalError(w, "failed to purge storage")
		return
	}
	if removed == 0 {
		writeNotFound(w, "no storage for native id")
		return
	}

	s.logger.Info("storage purged",
		"native_id", nativeID,
		"removed", removed,
		"subject", subjectFromContext(r.Context()),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"native_id": nativeID,
		"removed":   removed,
	})
}
