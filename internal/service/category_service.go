package service

import (
	"context"
	"fmt"
	"time"

	"openmart/internal/cache"
	apperrors "openmart/internal/errors"
	"openmart/internal/model"
	"openmart/internal/repository"
)

const (
	categoryCacheKey = "categories:all"
	categoryCacheTTL = 10 * time.Minute
)

// CategoryService exposes the category tree.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uint) (*model.Category, error)
	Seed(ctx context.Context, categories []model.Category) (int, error)
}

type categoryService struct {
	repo  repository.CategoryRepository
	cache *cache.Client
}

// NewCategoryService builds a CategoryService with repository and cache.
func NewCategoryService(repo repository.CategoryRepository, cache *cache.Client) CategoryService {
	return &categoryService{repo: repo, cache: cache}
}

// List returns all categories, served from redis when warm.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	var cached []model.Category
	if s.cache.GetJSON(ctx, categoryCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	_ = s.cache.SetJSON(ctx, categoryCacheKey, categories, categoryCacheTTL)
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrCategoryNotFound, "find category")
	}
	return category, nil
}

// Seed inserts missing categories by name and returns how many were created.
func (s *categoryService) Seed(ctx context.Context, categories []model.Category) (int, error) {
	created := 0
	for i := range categories {
		ok, err := s.repo.FindOrCreate(ctx, &categories[i])
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", categories[i].Name, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		_ = s.cache.Delete(ctx, categoryCacheKey)
	}
	return created, nil
}
