package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 3 * time.Second

// Health reports liveness of the two stores the sales workflow depends on,
// plus the dead-letter backlog of the async job queues. A down store answers
// 503 so the load balancer stops routing sales traffic here.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		checks := gin.H{}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "up"
		}

		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
			// Stuck receipt/alert jobs are worth surfacing even when both
			// stores answer.
			var backlog int64
			for _, q := range []string{worker.QueueReceipts, worker.QueueAlerts} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					backlog += n
				}
			}
			checks["dead_letters"] = backlog
		}

		status := http.StatusOK
		result := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			result = "degraded"
		}
		c.JSON(status, gin.H{
			"service": "saeedautobackend",
			"status":  result,
			"checks":  checks,
		})
	}
}
