package worker

// alert_worker.go
// Processes low-stock jobs from QueueAlerts: emails the shop's configured
// alert address when an item falls to or below its minimum stock level.

import (
	"context"
	"encoding/json"

	"github.com/saadullahkhan123123/saeedautobackend/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxAlertAttempts = 3

// LowStockJobPayload is the job envelope sent to QueueAlerts.
type LowStockJobPayload struct {
	ItemID   string `json:"item_id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	MinLevel int    `json:"min_level"`
}

type AlertWorker struct {
	mailer *infra.Mailer
	rdb    *redis.Client
}

func NewAlertWorker(mailer *infra.Mailer, rdb *redis.Client) *AlertWorker {
	return &AlertWorker{mailer: mailer, rdb: rdb}
}

// Process sends the low-stock email with retry; exhausted jobs go to the DLQ.
func (w *AlertWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload LowStockJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}
	if w.mailer == nil {
		log.Debug().Str("sku", payload.SKU).Msg("alert_worker: mailer not configured, alert dropped")
		return
	}

	sendErr := withRetry(ctx, maxAlertAttempts, func(attempt int) error {
		err := w.mailer.SendLowStockAlert(payload.Name, payload.SKU, payload.Quantity, payload.MinLevel)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("sku", payload.SKU).
				Msg("alert_worker: send failed, retrying")
		}
		return err
	})
	if sendErr != nil {
		SendToDLQ(ctx, w.rdb, QueueAlerts, "low_stock", raw, sendErr.Error(), maxAlertAttempts)
		return
	}
	log.Info().Str("sku", payload.SKU).Int("quantity", payload.Quantity).Msg("alert_worker: low-stock alert sent")
}
