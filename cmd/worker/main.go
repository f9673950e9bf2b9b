package main

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sceneforge/internal/pkg/logger"
	"sceneforge/internal/pkg/shutdown"
	"sceneforge/internal/render"
	"sceneforge/internal/repositories"
	"sceneforge/internal/storage"
	"sceneforge/internal/worker"
	"sceneforge/internal/worker/util"
)

func main() {
	log := logger.New(logger.Config{
		Level:       util.Env("LOG_LEVEL", "info"),
		Format:      util.Env("LOG_FORMAT", "json"),
		ServiceName: "sceneforge-worker",
	})

	log.Info("starting SceneForge worker", "version", "0.1.0")

	dbURL := util.MustEnv("DATABASE_URL")
	redisAddr := util.MustEnv("REDIS_ADDR")
	queueName := util.Env("JOB_QUEUE_NAME", "sceneforge:render")
	workspaceRoot := util.Env("MANIM_OUTPUT_DIR", "manim_output")

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	pipeline := render.NewPipeline(render.Config{
		ManimBin:   util.Env("MANIM_BIN", "manim"),
		FFmpegBin:  util.Env("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin: util.Env("FFPROBE_BIN", "ffprobe"),
		Timeout:    time.Duration(intEnv("MANIM_TIMEOUT", 300)) * time.Second,
	}, nil, log)

	deps := worker.Deps{
		Store:      repositories.NewAnimationRepository(pool),
		Pipeline:   pipeline,
		Workspaces: render.NewWorkspaceManager(workspaceRoot),
		SP:         sp,
		RDB:        rdb,
		QueueName:  queueName,
		Count:      intEnv("WORKER_COUNT", 1),
		Log:        log,
	}

	runCtx, cancel := context.WithCancel(ctx)
	shutdownMgr.RegisterSimple("worker-loop", cancel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Run(runCtx, deps); err != nil && err != context.Canceled {
			log.Error("worker stopped", "error", err.Error())
		}
	}()

	shutdownMgr.Wait()
	<-done
}

func intEnv(key string, def int) int {
	v := util.Env(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
