package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

const (
	catalogCacheKey = "ingredients:catalog"
	catalogCacheTTL = 10 * time.Minute
)

// IngredientService serves the read-only ingredient catalog. The full
// catalog is cached in redis when a client is configured; search queries
// always hit the database.
type IngredientService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewIngredientService(db *gorm.DB, redisClient *redis.Client) *IngredientService {
	return &IngredientService{db: db, redis: redisClient}
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.BaseIngredient, error) {
	var ingredient models.BaseIngredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// Search returns catalog entries matching the query, case-insensitively.
// Names starting with the query rank before names merely containing it, with
// name as the tie-break. An empty query returns the full catalog by name.
func (s *IngredientService) Search(ctx context.Context, query string) ([]models.BaseIngredient, error) {
	if query == "" {
		return s.catalog(ctx)
	}

	lowered := strings.ToLower(query)
	var ingredients []models.BaseIngredient
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+lowered+"%").
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:  "CASE WHEN LOWER(name) LIKE ? THEN 0 ELSE 1 END, name",
				Vars: []interface{}{lowered + "%"},
			},
		}).
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *IngredientService) catalog(ctx context.Context) ([]models.BaseIngredient, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var ingredients []models.BaseIngredient
			if err := json.Unmarshal(cached, &ingredients); err == nil {
				return ingredients, nil
			}
		}
	}

	var ingredients []models.BaseIngredient
	if err := s.db.WithContext(ctx).Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(ingredients); err == nil {
			if err := s.redis.Set(ctx, catalogCacheKey, payload, catalogCacheTTL).Err(); err != nil {
				log.Printf("[IngredientService] Failed to cache catalog: %v", err)
			}
		}
	}
	return ingredients, nil
}
