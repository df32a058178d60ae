package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

// Broadcast kinds.
const (
	BroadcastText    = "text"
	BroadcastRestock = "restock"
	BroadcastStock   = "stock"
)

var announcer *services.AnnounceService

// SetAnnouncer wires the announce service the broadcast job runs through.
// Call once at boot, before workers start.
func SetAnnouncer(a *services.AnnounceService) { announcer = a }

// Register makes all job types known to the queue. Call once at boot.
// Names must match the %T the dispatcher stamps on the envelope.
func Register() {
	queue.Register("*jobs.BroadcastJob", func() queue.Job { return &BroadcastJob{} })
}

// BroadcastJob fans a message out to every active receiver off the request
// path. Admin handlers dispatch it instead of blocking on thousands of
// sends.
type BroadcastJob struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func (j *BroadcastJob) Handle() error {
	if announcer == nil {
		return fmt.Errorf("jobs: announcer not configured")
	}

	var (
		result services.BroadcastResult
		err    error
	)
	switch j.Kind {
	case BroadcastRestock:
		result, err = announcer.RestockDigest()
	case BroadcastStock:
		result, err = announcer.StockList()
	default:
		result, err = announcer.Broadcast(j.Text)
	}
	if err != nil {
		return err
	}

	logger.Info("jobs: broadcast finished",
		"kind", j.Kind, "sent", result.Sent, "failed", result.Failed)
	return nil
}
