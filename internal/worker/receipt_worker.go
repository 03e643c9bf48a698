package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipts: loads the slip and pre-generates
// its PDF receipt so the download endpoint can serve it from disk.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/infra"
	"github.com/saadullahkhan123123/saeedautobackend/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxReceiptAttempts = 3

// ReceiptJobPayload is the job envelope sent to QueueReceipts.
type ReceiptJobPayload struct {
	SlipID string `json:"slip_id"`
}

type ReceiptWorker struct {
	slips          repository.SlipRepository
	rdb            *redis.Client
	pdfStoragePath string
}

func NewReceiptWorker(slips repository.SlipRepository, rdb *redis.Client, pdfStoragePath string) *ReceiptWorker {
	return &ReceiptWorker{slips: slips, rdb: rdb, pdfStoragePath: pdfStoragePath}
}

// Process generates the slip's PDF with exponential backoff; after the last
// failed attempt the job is parked in the DLQ.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	slipID, err := uuid.Parse(payload.SlipID)
	if err != nil {
		log.Error().Str("slip_id", payload.SlipID).Msg("receipt_worker: invalid slip_id")
		return
	}

	slip, err := w.slips.FindByID(ctx, slipID)
	if err != nil {
		log.Error().Err(err).Str("slip_id", payload.SlipID).Msg("receipt_worker: slip not found")
		return
	}

	genErr := withRetry(ctx, maxReceiptAttempts, func(attempt int) error {
		_, err := infra.GenerateSlipPDF(slip, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("slip_number", slip.SlipNumber).
				Msg("receipt_worker: PDF generation failed, retrying")
		}
		return err
	})
	if genErr != nil {
		SendToDLQ(ctx, w.rdb, QueueReceipts, "receipt", raw, genErr.Error(), maxReceiptAttempts)
		return
	}
	log.Info().Str("slip_number", slip.SlipNumber).Msg("receipt_worker: PDF generated")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
