package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

// IRedis caches the hot conversation state between turns and mirrors the
// pattern-snapshot version so multiple instances can detect a stale snapshot
// after an admin reload.
type IRedis interface {
	SetConversationState(ctx context.Context, conversationID string, payload string, expiration time.Duration) error
	GetConversationState(ctx context.Context, conversationID string) (string, error)
	DeleteConversationState(ctx context.Context, conversationID string) error
	SetSnapshotVersion(ctx context.Context, name string, version string) error
	GetSnapshotVersion(ctx context.Context, name string) (string, error)
}

var Nil = redis.Nil

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func conversationKey(conversationID string) string {
	return "conversation:state:" + conversationID
}

func snapshotKey(name string) string {
	return "snapshot:version:" + name
}

func (r *redisClient) SetConversationState(ctx context.Context, conversationID string, payload string, expiration time.Duration) error {
	err := r.client.Set(ctx, conversationKey(conversationID), payload, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error caching state for conversation %s: %v", conversationID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetConversationState(ctx context.Context, conversationID string) (string, error) {
	val, err := r.client.Get(ctx, conversationKey(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading state for conversation %s: %v", conversationID, err))
		return "", err
	}
	return val, nil
}

func (r *redisClient) DeleteConversationState(ctx context.Context, conversationID string) error {
	_, err := r.client.Del(ctx, conversationKey(conversationID)).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting state for conversation %s: %v", conversationID, err))
		return err
	}
	return nil
}

func (r *redisClient) SetSnapshotVersion(ctx context.Context, name string, version string) error {
	err := r.client.Set(ctx, snapshotKey(name), version, 0).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error setting snapshot version for %s: %v", name, err))
		return err
	}
	return nil
}

func (r *redisClient) GetSnapshotVersion(ctx context.Context, name string) (string, error) {
	val, err := r.client.Get(ctx, snapshotKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading snapshot version for %s: %v", name, err))
		return "", err
	}
	return val, nil
}
