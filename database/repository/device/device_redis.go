// Package deviceRepo stores FCM push tokens per user. Tokens arrive from the
// mobile/web clients and are only consumed by the notification service.
package deviceRepo

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type DeviceRepository interface {
	RegisterToken(ctx context.Context, userID, token string) error
	GetTokens(ctx context.Context, userID string) ([]string, error)
	RemoveToken(ctx context.Context, userID, token string) error
}

// RedisDeviceRepo keeps one token set per user.
type RedisDeviceRepo struct {
	client *redis.Client
}

func NewRedisDeviceRepo(client *redis.Client) *RedisDeviceRepo {
	return &RedisDeviceRepo{client: client}
}

func tokenKey(userID string) string {
	return "devices:" + userID
}

func (repo *RedisDeviceRepo) RegisterToken(ctx context.Context, userID, token string) error {
	if err := repo.client.SAdd(ctx, tokenKey(userID), token).Err(); err != nil {
		return fmt.Errorf("register device token for %s: %w", userID, err)
	}
	return nil
}

func (repo *RedisDeviceRepo) GetTokens(ctx context.Context, userID string) ([]string, error) {
	tokens, err := repo.client.SMembers(ctx, tokenKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch device tokens for %s: %w", userID, err)
	}
	return tokens, nil
}

func (repo *RedisDeviceRepo) RemoveToken(ctx context.Context, userID, token string) error {
	if err := repo.client.SRem(ctx, tokenKey(userID), token).Err(); err != nil {
		return fmt.Errorf("remove device token for %s: %w", userID, err)
	}
	return nil
}
