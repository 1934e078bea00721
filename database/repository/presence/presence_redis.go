package presenceRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consultly/models"

	"github.com/go-redis/redis/v8"
)

// presenceTTL bounds how long stale records linger after a room goes quiet.
const presenceTTL = 24 * time.Hour

// RedisPresenceRepo keeps presence in one Redis hash per room, field per
// participant.
type RedisPresenceRepo struct {
	client *redis.Client
}

func NewRedisPresenceRepo(client *redis.Client) *RedisPresenceRepo {
	return &RedisPresenceRepo{client: client}
}

func presenceKey(roomID string) string {
	return "presence:" + roomID
}

func (repo *RedisPresenceRepo) Upsert(ctx context.Context, rec models.PresenceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal presence record: %w", err)
	}
	key := presenceKey(rec.RoomID)
	pipe := repo.client.TxPipeline()
	pipe.HSet(ctx, key, rec.ParticipantID, payload)
	pipe.Expire(ctx, key, presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store presence for %s in room %s: %w", rec.ParticipantID, rec.RoomID, err)
	}
	return nil
}

func (repo *RedisPresenceRepo) Get(ctx context.Context, roomID, participantID string) (*models.PresenceRecord, error) {
	raw, err := repo.client.HGet(ctx, presenceKey(roomID), participantID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch presence for %s in room %s: %w", participantID, roomID, err)
	}
	var rec models.PresenceRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode presence record: %w", err)
	}
	return &rec, nil
}

func (repo *RedisPresenceRepo) List(ctx context.Context, roomID string) ([]models.PresenceRecord, error) {
	raw, err := repo.client.HGetAll(ctx, presenceKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list presence for room %s: %w", roomID, err)
	}
	records := make([]models.PresenceRecord, 0, len(raw))
	for _, v := range raw {
		var rec models.PresenceRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decode presence record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
