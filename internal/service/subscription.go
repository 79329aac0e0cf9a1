package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// SubscriptionService manages follower-to-author bindings. The self-reference
// check runs before any existence check; duplicates are decided by the
// composite unique index.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// AuthorSubscription is one entry of a user's subscription list: the author
// plus a preview of their recipes.
type AuthorSubscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
	IsSubscribed bool
}

func (s *SubscriptionService) Follow(ctx context.Context, followerID, authorID uuid.UUID) (*AuthorSubscription, error) {
	if followerID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sub := models.Subscription{
		FollowerID: followerID,
		AuthorID:   authorID,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.buildEntry(ctx, author, defaultRecipesLimit)
}

func (s *SubscriptionService) Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error {
	if followerID == authorID {
		return ErrSelfSubscription
	}

	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsSubscribed reports whether follower follows author.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}

const defaultRecipesLimit = 6

// List returns the user's subscriptions with each author's recipe preview.
func (s *SubscriptionService) List(ctx context.Context, followerID uuid.UUID, limit, offset, recipesLimit int) ([]AuthorSubscription, int64, error) {
	if recipesLimit <= 0 {
		recipesLimit = defaultRecipesLimit
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ?", followerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Subscription
	query := s.db.WithContext(ctx).Preload("Author").
		Where("follower_id = ?", followerID).
		Order("created_at")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]AuthorSubscription, 0, len(subs))
	for _, sub := range subs {
		entry, err := s.buildEntry(ctx, sub.Author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, total, nil
}

func (s *SubscriptionService) buildEntry(ctx context.Context, author models.User, recipesLimit int) (*AuthorSubscription, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at DESC").
		Limit(recipesLimit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	return &AuthorSubscription{
		Author:       author,
		Recipes:      recipes,
		RecipesCount: count,
		IsSubscribed: true,
	}, nil
}
