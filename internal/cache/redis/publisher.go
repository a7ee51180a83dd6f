package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/avelex/snipebot/internal/domain"
)

// snapshotChannel is the pub/sub channel external consumers subscribe to.
const snapshotChannel = "snipebot:status"

// SnapshotPublisher pushes each status snapshot onto a redis channel so
// external dashboards can follow the bot without touching its HTTP surface.
type SnapshotPublisher struct {
	rdb *redis.Client
}

// NewSnapshotPublisher creates a publisher on the shared client.
func NewSnapshotPublisher(c *Client) *SnapshotPublisher {
	return &SnapshotPublisher{rdb: c.Underlying()}
}

// Publish serializes and publishes one snapshot.
func (p *SnapshotPublisher) Publish(ctx context.Context, snap domain.StatusSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := p.rdb.Publish(ctx, snapshotChannel, data).Err(); err != nil {
		return fmt.Errorf("redis: publish snapshot: %w", err)
	}
	return nil
}
