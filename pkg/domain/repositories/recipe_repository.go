package repositories

import (
	"context"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// RecipeRepository provides access to recipe lines
type RecipeRepository interface {
	FindComponentsOf(ctx context.Context, parentID entities.ItemID) ([]*entities.RecipeLine, error)
	FindParentsOf(ctx context.Context, componentID entities.ItemID) ([]*entities.RecipeLine, error)
	All(ctx context.Context) ([]*entities.RecipeLine, error)
	// Save returns entities.ErrDuplicate when (parent, component) already exists
	Save(ctx context.Context, line *entities.RecipeLine) error
}
