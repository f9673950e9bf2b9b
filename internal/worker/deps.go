package worker

import (
	"github.com/redis/go-redis/v9"

	"sceneforge/internal/pkg/logger"
	"sceneforge/internal/ports"
	"sceneforge/internal/worker/processor"
)

type Deps struct {
	Store      processor.JobStore
	Pipeline   processor.RenderPipeline
	Workspaces processor.Workspaces
	SP         ports.StorageProvider
	RDB        *redis.Client
	QueueName  string
	// Count is the number of concurrent queue consumers.
	Count int
	Log   *logger.Logger
}
