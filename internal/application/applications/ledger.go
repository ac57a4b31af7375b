package applications

import (
	"context"
	"encoding/json"
	"time"

	"volunhub-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CapacitySummary is the derived read model exposed to dashboards and the
// list endpoint.
type CapacitySummary struct {
	ApprovedCount  int  `json:"approvedCount"`
	MaxVolunteers  int  `json:"maxVolunteers"`
	RemainingSlots int  `json:"remainingSlots"`
	IsFull         bool `json:"isFull"`
}

// approvedCount counts live approved applications for the event on the given
// transaction. Every approval decision calls this inside its own transaction;
// the denormalized Event.CurrentVolunteers counter is never trusted for it.
func approvedCount(tx *gorm.DB, eventID uuid.UUID) (int, error) {
	var n int64
	err := tx.Model(&domain.Application{}).
		Where("event_id = ? AND status = ?", eventID, domain.ApplicationApproved).
		Count(&n).Error
	return int(n), err
}

func buildSummary(approved, maxVolunteers int) CapacitySummary {
	remaining := maxVolunteers - approved
	if remaining < 0 {
		remaining = 0
	}
	return CapacitySummary{
		ApprovedCount:  approved,
		MaxVolunteers:  maxVolunteers,
		RemainingSlots: remaining,
		IsFull:         approved >= maxVolunteers,
	}
}

const capacityCachePrefix = "capacity:"
const capacityCacheTTL = 30 * time.Second

// SummaryCache caches capacity summaries in Redis for read paths. It is
// invalidated on every transition and never consulted for approval decisions.
type SummaryCache struct {
	Rdb *redis.Client
}

func (c *SummaryCache) Get(ctx context.Context, eventID uuid.UUID) (*CapacitySummary, bool) {
	if c == nil || c.Rdb == nil {
		return nil, false
	}
	b, err := c.Rdb.Get(ctx, capacityCachePrefix+eventID.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var s CapacitySummary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (c *SummaryCache) Put(ctx context.Context, eventID uuid.UUID, s CapacitySummary) {
	if c == nil || c.Rdb == nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	c.Rdb.Set(ctx, capacityCachePrefix+eventID.String(), b, capacityCacheTTL)
}

func (c *SummaryCache) Invalidate(ctx context.Context, eventID uuid.UUID) {
	if c == nil || c.Rdb == nil {
		return
	}
	c.Rdb.Del(ctx, capacityCachePrefix+eventID.String())
}
