package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sceneforge/internal/generator"
	"sceneforge/internal/httpapi/handlers"
	"sceneforge/internal/httpkit"
	"sceneforge/internal/pkg/logger"
	"sceneforge/internal/pkg/middleware"
	"sceneforge/internal/ports"
	"sceneforge/internal/repositories"
)

type Deps struct {
	Pool      *pgxpool.Pool
	RDB       *redis.Client
	SP        ports.StorageProvider
	Repo      *repositories.AnimationRepository
	Gen       generator.Client
	QueueName string
	Log       *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	// ---- CORS (Swagger UI + Frontend futuro) ----
	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8081",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Pool:      d.Pool,
		RDB:       d.RDB,
		SP:        d.SP,
		Repo:      d.Repo,
		Gen:       d.Gen,
		QueueName: d.QueueName,
		Log:       log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- QUALITIES ----
	r.Get("/qualities", h.GetQualities)

	// ---- ANIMATIONS ----
	r.Post("/animations", h.PostAnimation)
	r.Get("/animations", h.ListAnimations)
	r.Get("/animations/{animationId}", h.GetAnimation)
	r.Post("/animations/{animationId}/regenerate", h.RegenerateAnimation)
	r.Get("/animations/{animationId}/video", h.StreamVideo)
	r.Get("/animations/{animationId}/thumbnail", h.StreamThumbnail)

	return r
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
