package workflow

import (
	"context"
	"fmt"

	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/httpkit"
	"pulsecapture_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Worker consumes queued workflow triggers and calls the engine.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	client *Client
	log    *logger.Logger
}

func NewWorker(cfg config.DispatchConfig, client *Client, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		client: client,
		log:    log,
	}

	mux.HandleFunc(TaskLeadProcessing, w.handleLeadProcessing)

	return w, nil
}

func (w *Worker) handleLeadProcessing(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadProcessingPayload(task)
	if err != nil {
		return err
	}

	result := w.client.TriggerLeadProcessing(ctx, payload)
	httpkit.RecordDispatch("lead_processing", result.Success)
	// Dispatch failures are terminal; the engine is not re-triggered.
	return nil
}

// Run starts the worker until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("workflow worker stopped", "error", err.Error())
	}
}
