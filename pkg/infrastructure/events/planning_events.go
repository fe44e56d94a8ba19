package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

const (
	PackingRecalculatedEvent = "packing.recalculated"
	FillingReplacedEvent     = "filling.replaced"
	ProductionReplacedEvent  = "production.replaced"
	ProductionUpsertedEvent  = "production.upserted"
	ProductionDeletedEvent   = "production.deleted"
	ExplosionCompletedEvent  = "explosion.completed"
	ExplosionFailedEvent     = "explosion.failed"
	SOHUploadedEvent         = "soh.uploaded"
)

// Streams group events by planning day or upload
func DayStream(day time.Time) string {
	return "day-" + day.Format(time.DateOnly)
}

func UploadStream(uploadID string) string {
	return "upload-" + uploadID
}

type PackingRecalculated struct {
	Packing entities.Packing `json:"packing"`
}

type RowsReplaced struct {
	RunID   string          `json:"run_id"`
	Deleted int64           `json:"deleted"`
	Created int             `json:"created"`
	TotalKg decimal.Decimal `json:"total_kg"`
}

type ProductionChanged struct {
	ProductionDate time.Time       `json:"production_date"`
	ItemID         entities.ItemID `json:"item_id"`
	TotalKg        decimal.Decimal `json:"total_kg"`
}

type ExplosionCompleted struct {
	RunID   string `json:"run_id"`
	Success bool   `json:"success"`
	Summary string `json:"summary"`
}

type SOHUploaded struct {
	UploadID  string `json:"upload_id"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
}

// Publisher appends planning events, ignoring a nil store
type Publisher struct {
	store EventStore
}

// NewPublisher creates a publisher appending to store
func NewPublisher(store EventStore) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Publish(streamID, eventType string, data any) {
	if p == nil || p.store == nil {
		return
	}
	_ = p.store.AppendEvent(streamID, NewEvent(eventType, streamID, data))
}
