package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
)

func TestCategoryService_Seed(t *testing.T) {
	m := newMarketplace(t)
	ctx := context.Background()
	defaults := model.DefaultCategories()

	created, err := m.catalog.Seed(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, len(defaults), created)

	created, err = m.catalog.Seed(ctx, model.DefaultCategories())
	require.NoError(t, err)
	assert.Zero(t, created)

	categories, err := m.catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(defaults))

	_, err = m.catalog.Get(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}
