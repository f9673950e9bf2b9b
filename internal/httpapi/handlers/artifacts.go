package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sceneforge/internal/httpkit"
	"sceneforge/internal/models"
)

// StreamVideo serves the rendered artifact through the storage provider, for
// providers without signed URLs.
func (h *Handler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	h.streamArtifact(w, r, func(out *models.RenderOutcome) (string, string) {
		return out.VideoObjectKey, "video/mp4"
	})
}

func (h *Handler) StreamThumbnail(w http.ResponseWriter, r *http.Request) {
	h.streamArtifact(w, r, func(out *models.RenderOutcome) (string, string) {
		return out.ThumbObjectKey, "image/jpeg"
	})
}

func (h *Handler) streamArtifact(w http.ResponseWriter, r *http.Request, pick func(*models.RenderOutcome) (objectKey, mime string)) {
	ctx := r.Context()
	animID := chi.URLParam(r, "animationId")

	anim, err := h.repo.Get(ctx, animID)
	if err != nil {
		httpkit.WriteErr(w, 404, "ANIMATION_NOT_FOUND", "animation not found", map[string]any{"animation_id": animID})
		return
	}
	if anim.Result == nil {
		httpkit.WriteErr(w, 404, "ARTIFACT_NOT_READY", "animation has no artifact", map[string]any{"status": anim.Status})
		return
	}

	objectKey, mimeType := pick(anim.Result)
	if objectKey == "" {
		httpkit.WriteErr(w, 404, "ARTIFACT_NOT_READY", "artifact not available", nil)
		return
	}

	rc, ct, size, err := h.sp.GetObject(ctx, objectKey)
	if err != nil {
		httpkit.WriteErr(w, 404, "ARTIFACT_FILE_MISSING", "artifact file missing", map[string]any{"object_key": objectKey})
		return
	}
	defer rc.Close()

	if ct == "" {
		ct = mimeType
	}
	w.Header().Set("Content-Type", ct)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	_, _ = io.Copy(w, rc)
}
