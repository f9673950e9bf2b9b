package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sceneforge/internal/generator"
	"sceneforge/internal/pkg/logger"
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

type Handler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	sp        ports.StorageProvider
	repo      *repositories.AnimationRepository
	gen       generator.Client
	queueName string
	log       *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		pool:      d.Pool,
		rdb:       d.RDB,
		sp:        d.SP,
		repo:      d.Repo,
		gen:       d.Gen,
		queueName: d.QueueName,
		log:       log.WithComponent("handlers"),
	}
}
