package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "taskpilot:dedup:"

// DedupStore implements ports.DedupStore with SET NX and a TTL, so only the
// first writer of a key inside the window wins.
type DedupStore struct {
	client *redis.Client
}

func NewDedupStore(client *redis.Client) *DedupStore {
	return &DedupStore{client: client}
}

func (d *DedupStore) MarkOnce(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, keyPrefix+key, time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("dedup %s: %w", key, err)
	}
	return ok, nil
}
