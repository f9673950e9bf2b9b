package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	v1 "sceneforge/internal/contracts/generator/v1"
	"sceneforge/internal/httpapi/util"
	"sceneforge/internal/httpkit"
	"sceneforge/internal/models"
	"sceneforge/internal/render"
)

type CreateAnimationRequest struct {
	Prompt      string `json:"prompt,omitempty"`
	Script      string `json:"script,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Quality     string `json:"quality,omitempty"`
}

type RegenerateAnimationRequest struct {
	Prompt             string `json:"prompt,omitempty"`
	ImprovementRequest string `json:"improvement_request,omitempty"`
}

// PostAnimation creates a render job: generate (or accept) the script, record
// the job as pending, and enqueue its id. The pipeline never runs in-band.
func (h *Handler) PostAnimation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	var req CreateAnimationRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Quality = strings.TrimSpace(req.Quality)

	if req.Script == "" && len(req.Prompt) < 10 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "prompt must be at least 10 characters (or supply a script)", map[string]any{"field": "prompt"})
		return
	}
	if req.Quality != "" && !render.ValidProfile(req.Quality) {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unknown quality profile", map[string]any{"field": "quality"})
		return
	}

	anim := &models.Animation{
		ID:          util.NewID("anim"),
		Title:       strings.TrimSpace(req.Title),
		Prompt:      req.Prompt,
		Description: strings.TrimSpace(req.Description),
		Script:      req.Script,
		Quality:     req.Quality,
		Status:      models.StatusPending,
	}

	// Generation is a submission concern; its failure never reaches the
	// pipeline.
	if anim.Script == "" {
		gen, err := h.gen.Generate(ctx, v1.GenerateRequest{Prompt: req.Prompt})
		if err != nil {
			log.Error("script generation failed", "error", err.Error())
			httpkit.WriteErr(w, 502, "GENERATION_FAILED", "failed to generate animation script", nil)
			return
		}
		anim.Script = gen.Script
		if anim.Title == "" {
			anim.Title = gen.Title
		}
		if anim.Description == "" {
			anim.Description = gen.Description
		}
	}

	if err := h.repo.Create(ctx, anim); err != nil {
		log.Error("animation insert failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db insert failed", nil)
		return
	}

	if err := h.enqueue(ctx, anim.ID); err != nil {
		log.Error("queue push failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "queue push failed", nil)
		return
	}

	httpkit.WriteJSON(w, 202, map[string]any{
		"animation_id": anim.ID,
		"status":       anim.Status,
		"title":        anim.Title,
		"created_at":   anim.CreatedAt,
	})
}

func (h *Handler) ListAnimations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limit := 50
	if s := strings.TrimSpace(r.URL.Query().Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	items, err := h.repo.List(ctx, status, limit)
	if err != nil {
		// Tolerate a database that has not been migrated yet.
		if httpkit.IsUndefinedTable(err) {
			httpkit.WriteJSON(w, 200, map[string]any{"animations": []models.Animation{}})
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"animations": items})
}

func (h *Handler) GetAnimation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	animID := chi.URLParam(r, "animationId")

	anim, err := h.repo.Get(ctx, animID)
	if err != nil {
		httpkit.WriteErr(w, 404, "ANIMATION_NOT_FOUND", "animation not found", map[string]any{"animation_id": animID})
		return
	}

	// result and error are explicit nulls so callers can switch on them.
	var result any
	if anim.Result != nil {
		// Providers without signed URLs leave the URLs empty; point callers at
		// the streaming endpoints instead.
		if anim.Result.VideoURL == "" {
			anim.Result.VideoURL = fmt.Sprintf("http://localhost:%s/animations/%s/video", util.Env("HTTP_PORT", "8080"), anim.ID)
		}
		if anim.Result.ThumbObjectKey != "" && anim.Result.ThumbURL == "" {
			anim.Result.ThumbURL = fmt.Sprintf("http://localhost:%s/animations/%s/thumbnail", util.Env("HTTP_PORT", "8080"), anim.ID)
		}
		result = anim.Result
	}
	var errText any
	if anim.Error != "" {
		errText = anim.Error
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"animation": map[string]any{
			"id":          anim.ID,
			"title":       anim.Title,
			"prompt":      anim.Prompt,
			"description": anim.Description,
			"quality":     anim.Quality,
			"status":      anim.Status,
			"result":      result,
			"error":       errText,
			"created_at":  anim.CreatedAt,
			"updated_at":  anim.UpdatedAt,
			"started_at":  anim.StartedAt,
			"finished_at": anim.FinishedAt,
		},
	})
}

// RegenerateAnimation starts a fresh pending→running traversal on the same
// record. Rejected while a run is in flight; the prior terminal outcome is
// overwritten once the new traversal finishes.
func (h *Handler) RegenerateAnimation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)
	animID := chi.URLParam(r, "animationId")

	var req RegenerateAnimationRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	anim, err := h.repo.Get(ctx, animID)
	if err != nil {
		httpkit.WriteErr(w, 404, "ANIMATION_NOT_FOUND", "animation not found", map[string]any{"animation_id": animID})
		return
	}
	if anim.Status == models.StatusRunning {
		httpkit.WriteErr(w, 409, "ANIMATION_RUNNING", "animation is currently rendering", map[string]any{"animation_id": animID})
		return
	}

	fields := map[string]any{
		"status":     models.StatusPending,
		"error_text": nil,
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = anim.Prompt
	}
	if prompt != "" {
		gen, err := h.gen.Generate(ctx, v1.GenerateRequest{
			Prompt:  prompt,
			Context: strings.TrimSpace(req.ImprovementRequest),
		})
		if err != nil {
			log.Error("script regeneration failed", "error", err.Error())
			httpkit.WriteErr(w, 502, "GENERATION_FAILED", "failed to regenerate animation script", nil)
			return
		}
		fields["script"] = gen.Script
		fields["prompt"] = prompt
	}

	if err := h.repo.UpdateFields(ctx, animID, fields); err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db update failed", nil)
		return
	}

	if err := h.enqueue(ctx, animID); err != nil {
		log.Error("queue push failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "queue push failed", nil)
		return
	}

	httpkit.WriteJSON(w, 202, map[string]any{
		"animation_id": animID,
		"status":       models.StatusPending,
	})
}

func (h *Handler) GetQualities(w http.ResponseWriter, r *http.Request) {
	httpkit.WriteJSON(w, 200, map[string]any{
		"qualities": render.Profiles(),
		"default":   render.DefaultProfileName,
	})
}

func (h *Handler) enqueue(ctx context.Context, animID string) error {
	return h.rdb.LPush(ctx, h.queueName, animID).Err()
}
