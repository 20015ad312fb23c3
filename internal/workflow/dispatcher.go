package workflow

import (
	"context"
	"time"

	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/httpkit"
	"pulsecapture_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Dispatcher fires lead-processing triggers without blocking the request that
// captured the lead. With Redis configured, triggers go through an asynq
// queue; otherwise they run on a detached goroutine.
type Dispatcher struct {
	client *Client
	queue  *asynq.Client
	name   string
	log    *logger.Logger
}

// NewDispatcher builds the dispatcher. A nil or empty Redis URL selects the
// in-process fallback.
func NewDispatcher(cfg config.DispatchConfig, client *Client, log *logger.Logger) (*Dispatcher, error) {
	d := &Dispatcher{client: client, log: log}

	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		log.Warn("REDIS_URL not configured; dispatching workflow triggers in-process")
		return d, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	d.queue = asynq.NewClient(asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	})
	d.name = queue
	return d, nil
}

// Close releases the queue connection.
func (d *Dispatcher) Close() error {
	if d == nil || d.queue == nil {
		return nil
	}
	return d.queue.Close()
}

// DispatchLeadProcessing fires the scoring trigger for a captured lead.
// Failures are logged and recorded by the worker; the caller never fails.
func (d *Dispatcher) DispatchLeadProcessing(ctx context.Context, payload LeadPayload) {
	if d.queue != nil {
		task, err := NewLeadProcessingTask(payload)
		if err == nil {
			if _, err = d.queue.EnqueueContext(ctx, task, asynq.Queue(d.name)); err == nil {
				return
			}
		}
		d.log.Error("failed to enqueue workflow trigger, falling back to in-process dispatch",
			"lead_id", payload.LeadID, "error", err.Error())
	}

	go func() {
		dispatchCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		result := d.client.TriggerLeadProcessing(dispatchCtx, payload)
		httpkit.RecordDispatch("lead_processing", result.Success)
	}()
}
