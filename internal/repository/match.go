package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/onitama-backend/internal/entity"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	CreateOrUpdate(ctx context.Context, record *entity.MatchRecord) error
	GetByKey(ctx context.Context, key string) (*entity.MatchRecord, error)
	DeleteByKey(ctx context.Context, key string) error
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchRepository(client *redis.Client) MatchRepository {
	return &dbMatch{
		client: client,
	}
}

func (that *dbMatch) CreateOrUpdate(ctx context.Context, record *entity.MatchRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal match record: %w", err)
	}

	matchKey := "match:" + record.Key
	if err = that.client.Set(ctx, matchKey, recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set match record: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByKey(ctx context.Context, key string) (*entity.MatchRecord, error) {
	matchKey := "match:" + key

	response, err := that.client.Get(ctx, matchKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.MatchRecord{}, ErrMatchNotFound
	}

	if err != nil {
		return &entity.MatchRecord{}, fmt.Errorf("failed to get match record: %w", err)
	}

	var record entity.MatchRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return &entity.MatchRecord{}, fmt.Errorf("failed to unmarshal match record: %w", err)
	}

	return &record, nil
}

func (that *dbMatch) DeleteByKey(ctx context.Context, key string) error {
	matchKey := "match:" + key

	if err := that.client.Del(ctx, matchKey).Err(); err != nil {
		return fmt.Errorf("failed to delete match record: %w", err)
	}

	return nil
}
