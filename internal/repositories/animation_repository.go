package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"sceneforge/internal/httpkit"
	"sceneforge/internal/models"
	"sceneforge/internal/pkg/errors"
)

// AnimationRepository is the Postgres-backed metadata store for render jobs.
// Updates are always partial: unrelated fields are never clobbered.
type AnimationRepository struct {
	db *pgxpool.Pool
}

func NewAnimationRepository(db *pgxpool.Pool) *AnimationRepository {
	return &AnimationRepository{db: db}
}

func (r *AnimationRepository) Create(ctx context.Context, a *models.Animation) error {
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if a.Quality == "" {
		a.Quality = "medium_quality"
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO animations (id, title, prompt, description, script, quality, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, a.ID, nullIfEmpty(a.Title), nullIfEmpty(a.Prompt), nullIfEmpty(a.Description),
		a.Script, a.Quality, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.AlreadyExists("animation", a.ID)
		}
		return errors.Wrap(err, "animations.create", "db insert failed")
	}
	return nil
}

func (r *AnimationRepository) Get(ctx context.Context, id string) (*models.Animation, error) {
	var (
		a                                  models.Animation
		title, prompt, description, errTxt *string
		videoKey, videoURL                 *string
		thumbKey, thumbURL, resolution     *string
		sizeBytes, renderMs                *int64
		durationSeconds                    *float64
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, title, prompt, description, script, quality, status, error_text,
		       video_object_key, video_url, thumb_object_key, thumb_url,
		       size_bytes, resolution, duration_seconds, render_ms,
		       created_at, updated_at, started_at, finished_at
		FROM animations
		WHERE id=$1
	`, id).Scan(
		&a.ID, &title, &prompt, &description, &a.Script, &a.Quality, &a.Status, &errTxt,
		&videoKey, &videoURL, &thumbKey, &thumbURL,
		&sizeBytes, &resolution, &durationSeconds, &renderMs,
		&a.CreatedAt, &a.UpdatedAt, &a.StartedAt, &a.FinishedAt,
	)
	if err != nil {
		return nil, errors.NotFound("animation", id)
	}

	a.Title = deref(title)
	a.Prompt = deref(prompt)
	a.Description = deref(description)
	a.Error = deref(errTxt)

	if a.Status == models.StatusCompleted && videoKey != nil {
		a.Result = &models.RenderOutcome{
			VideoObjectKey: *videoKey,
			VideoURL:       deref(videoURL),
			ThumbObjectKey: deref(thumbKey),
			ThumbURL:       deref(thumbURL),
			Resolution:     deref(resolution),
		}
		if sizeBytes != nil {
			a.Result.SizeBytes = *sizeBytes
		}
		if durationSeconds != nil {
			a.Result.DurationSeconds = *durationSeconds
		}
		if renderMs != nil {
			a.Result.RenderMs = *renderMs
		}
	}
	return &a, nil
}

func (r *AnimationRepository) List(ctx context.Context, status string, limit int) ([]models.Animation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := `SELECT id, COALESCE(title,''), quality, status, created_at, started_at, finished_at
	      FROM animations`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, status, limit)
	} else {
		q += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "animations.list", "db query failed")
	}
	defer rows.Close()

	out := make([]models.Animation, 0, limit)
	for rows.Next() {
		var a models.Animation
		if err := rows.Scan(&a.ID, &a.Title, &a.Quality, &a.Status, &a.CreatedAt, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, errors.Wrap(err, "animations.list", "row scan failed")
		}
		out = append(out, a)
	}
	return out, nil
}

// updatableColumns is the allowlist for partial updates.
var updatableColumns = map[string]bool{
	"title":       true,
	"prompt":      true,
	"description": true,
	"script":      true,
	"quality":     true,
	"status":      true,
	"error_text":  true,
}

// UpdateFields applies a partial update: only the named columns change, plus
// updated_at. Unknown columns are rejected.
func (r *AnimationRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	set := make([]string, 0, len(fields)+1)
	args := []any{id}
	for col, v := range fields {
		if !updatableColumns[col] {
			return errors.Validationf("column not updatable: %s", col)
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	set = append(set, "updated_at=now()")

	cmd, err := r.db.Exec(ctx,
		`UPDATE animations SET `+strings.Join(set, ", ")+` WHERE id=$1`,
		args...,
	)
	if err != nil {
		return errors.Wrap(err, "animations.update", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("animation", id)
	}
	return nil
}

// ClaimRun is the only pending/terminal→running edge. The conditional UPDATE
// makes concurrent claims for one id impossible by construction: a second
// start request while running loses the WHERE clause and is rejected.
// Claiming also clears the previous traversal's outcome so a regeneration
// starts from a clean record.
func (r *AnimationRepository) ClaimRun(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE animations
		SET status='running', started_at=now(), finished_at=NULL, updated_at=now(),
		    error_text=NULL, video_object_key=NULL, video_url=NULL,
		    thumb_object_key=NULL, thumb_url=NULL,
		    size_bytes=NULL, resolution=NULL, duration_seconds=NULL, render_ms=NULL
		WHERE id=$1 AND status <> 'running'
	`, id)
	if err != nil {
		return errors.Wrap(err, "animations.claim", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return errors.Conflict("animation is already running").WithField("id", id)
	}
	return nil
}

// Complete records a successful traversal outcome and stamps finished_at.
func (r *AnimationRepository) Complete(ctx context.Context, id string, out models.RenderOutcome) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE animations
		SET status='completed', finished_at=now(), updated_at=now(), error_text=NULL,
		    video_object_key=$2, video_url=$3, thumb_object_key=$4, thumb_url=$5,
		    size_bytes=$6, resolution=$7, duration_seconds=$8, render_ms=$9
		WHERE id=$1
	`, id,
		out.VideoObjectKey, nullIfEmpty(out.VideoURL),
		nullIfEmpty(out.ThumbObjectKey), nullIfEmpty(out.ThumbURL),
		out.SizeBytes, nullIfEmpty(out.Resolution), out.DurationSeconds, out.RenderMs,
	)
	if err != nil {
		return errors.Wrap(err, "animations.complete", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("animation", id)
	}
	return nil
}

// Fail records the failure cause verbatim and stamps finished_at.
func (r *AnimationRepository) Fail(ctx context.Context, id string, cause string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE animations
		SET status='failed', finished_at=now(), updated_at=now(), error_text=$2
		WHERE id=$1
	`, id, cause)
	if err != nil {
		return errors.Wrap(err, "animations.fail", "db update failed")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("animation", id)
	}
	return nil
}

// Ping verifies database connectivity for health checks.
func (r *AnimationRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
