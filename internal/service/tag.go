package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

const (
	tagsCacheKey = "tags:all"
	tagsCacheTTL = 10 * time.Minute
)

// TagService serves the read-only tag reference data.
type TagService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewTagService(db *gorm.DB, redisClient *redis.Client) *TagService {
	return &TagService{db: db, redis: redisClient}
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, tagsCacheKey).Bytes(); err == nil {
			var tags []models.Tag
			if err := json.Unmarshal(cached, &tags); err == nil {
				return tags, nil
			}
		}
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(tags); err == nil {
			if err := s.redis.Set(ctx, tagsCacheKey, payload, tagsCacheTTL).Err(); err != nil {
				log.Printf("[TagService] Failed to cache tags: %v", err)
			}
		}
	}
	return tags, nil
}
