package webhookin

import (
	"context"
	"net/http"
	"time"

	"pulsecapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const deliveryKeyTTL = 24 * time.Hour

// Deduper tracks processed delivery IDs in Redis so a redelivered callback is
// acknowledged without being applied twice. Callbacks without a delivery ID
// are always processed.
type Deduper struct {
	client *redis.Client
	log    *logger.Logger
}

// NewDeduper connects to Redis. An empty URL disables deduplication.
func NewDeduper(redisURL string, log *logger.Logger) (*Deduper, error) {
	if redisURL == "" {
		log.Warn("REDIS_URL not configured; webhook deduplication disabled")
		return &Deduper{log: log}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return &Deduper{client: redis.NewClient(opt), log: log}, nil
}

// NewDeduperWithClient wraps an existing Redis client. Used by tests.
func NewDeduperWithClient(client *redis.Client, log *logger.Logger) *Deduper {
	return &Deduper{client: client, log: log}
}

// Close releases the Redis connection.
func (d *Deduper) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

// MarkSeen records a delivery ID and reports whether it was already present.
func (d *Deduper) MarkSeen(ctx context.Context, deliveryID string) (bool, error) {
	if d.client == nil {
		return false, nil
	}

	fresh, err := d.client.SetNX(ctx, "webhook:delivery:"+deliveryID, 1, deliveryKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

// Middleware short-circuits redelivered callbacks with a 200 acknowledgement.
// On Redis failure the callback is processed anyway; losing a result is worse
// than applying one twice.
func (d *Deduper) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deliveryID := c.GetHeader(DeliveryIDHeader)
		if deliveryID == "" {
			c.Next()
			return
		}

		seen, err := d.MarkSeen(c.Request.Context(), deliveryID)
		if err != nil {
			d.log.Error("webhook dedup check failed", "delivery_id", deliveryID, "error", err.Error())
			c.Next()
			return
		}

		if seen {
			d.log.Info("duplicate webhook delivery acknowledged", "delivery_id", deliveryID)
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"success":   true,
				"duplicate": true,
				"message":   "Delivery already processed",
			})
			return
		}

		c.Next()
	}
}
