package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

// RecipeRepository provides in-memory recipe storage
type RecipeRepository struct {
	data *dataset
}

// Verify interface compliance
var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

// LoadRecipeLines saves recipe lines in order
func (r *RecipeRepository) LoadRecipeLines(ctx context.Context, lines []*entities.RecipeLine) error {
	for _, line := range lines {
		if err := r.Save(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// FindComponentsOf returns the recipe of a parent item
func (r *RecipeRepository) FindComponentsOf(_ context.Context, parentID entities.ItemID) ([]*entities.RecipeLine, error) {
	return r.filter(func(l entities.RecipeLine) bool { return l.ParentID == parentID }), nil
}

// FindParentsOf returns every recipe line that uses the component
func (r *RecipeRepository) FindParentsOf(_ context.Context, componentID entities.ItemID) ([]*entities.RecipeLine, error) {
	return r.filter(func(l entities.RecipeLine) bool { return l.ComponentID == componentID }), nil
}

// All returns every recipe line
func (r *RecipeRepository) All(_ context.Context) ([]*entities.RecipeLine, error) {
	return r.filter(func(entities.RecipeLine) bool { return true }), nil
}

// Save inserts a line or updates the quantity of an existing one
func (r *RecipeRepository) Save(_ context.Context, line *entities.RecipeLine) error {
	for i, existing := range r.data.recipes {
		if existing.ParentID != line.ParentID || existing.ComponentID != line.ComponentID {
			continue
		}
		if line.ID != existing.ID {
			return fmt.Errorf("%w: recipe line %s", entities.ErrDuplicate, line.Key())
		}
		r.data.recipes[i] = *line
		return nil
	}
	if line.ID == 0 {
		line.ID = r.data.newID()
	}
	r.data.recipes = append(r.data.recipes, *line)
	return nil
}

func (r *RecipeRepository) filter(keep func(entities.RecipeLine) bool) []*entities.RecipeLine {
	var lines []*entities.RecipeLine
	for _, line := range r.data.recipes {
		if keep(line) {
			l := line
			lines = append(lines, &l)
		}
	}
	return lines
}
