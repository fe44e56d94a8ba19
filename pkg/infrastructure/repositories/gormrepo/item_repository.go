package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

var (
	_ repositories.ItemRepository   = (*ItemRepository)(nil)
	_ repositories.RecipeRepository = (*RecipeRepository)(nil)
)

// ItemRepository reads and writes the items table
type ItemRepository struct {
	db *gorm.DB
}

func (r *ItemRepository) FindByID(ctx context.Context, id entities.ItemID) (*entities.Item, error) {
	var rec ItemRecord
	if err := r.db.WithContext(ctx).First(&rec, uint(id)).Error; err != nil {
		return nil, translateError(err, describe("item %d", id))
	}
	return rec.toEntity()
}

func (r *ItemRepository) FindByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error) {
	var rec ItemRecord
	if err := r.db.WithContext(ctx).Where("code = ?", string(code)).First(&rec).Error; err != nil {
		return nil, translateError(err, describe("item %s", code))
	}
	return rec.toEntity()
}

func (r *ItemRepository) FindByType(ctx context.Context, itemType entities.ItemType) ([]*entities.Item, error) {
	var recs []ItemRecord
	err := r.db.WithContext(ctx).
		Where("item_type = ?", itemType.String()).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, translateError(err, describe("items of type %s", itemType))
	}
	items := make([]*entities.Item, 0, len(recs))
	for _, rec := range recs {
		item, err := rec.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ItemRepository) Save(ctx context.Context, item *entities.Item) error {
	rec := itemToRecord(item)
	what := describe("item %s", item.Code)
	if rec.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return translateError(err, what)
		}
		item.ID = entities.ItemID(rec.ID)
		return nil
	}
	return updateRow(ctx, r.db, rec.ID, &rec, what)
}

// RecipeRepository reads and writes the recipes table
type RecipeRepository struct {
	db *gorm.DB
}

func (r *RecipeRepository) lines(ctx context.Context, what string, query any, args ...any) ([]*entities.RecipeLine, error) {
	var recs []RecipeRecord
	tx := r.db.WithContext(ctx)
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Order("id").Find(&recs).Error; err != nil {
		return nil, translateError(err, what)
	}
	lines := make([]*entities.RecipeLine, 0, len(recs))
	for _, rec := range recs {
		lines = append(lines, rec.toEntity())
	}
	return lines, nil
}

func (r *RecipeRepository) FindComponentsOf(ctx context.Context, parentID entities.ItemID) ([]*entities.RecipeLine, error) {
	return r.lines(ctx, describe("recipe of %d", parentID), "parent_id = ?", uint(parentID))
}

func (r *RecipeRepository) FindParentsOf(ctx context.Context, componentID entities.ItemID) ([]*entities.RecipeLine, error) {
	return r.lines(ctx, describe("parents of %d", componentID), "component_id = ?", uint(componentID))
}

func (r *RecipeRepository) All(ctx context.Context) ([]*entities.RecipeLine, error) {
	return r.lines(ctx, "recipes", nil)
}

func (r *RecipeRepository) Save(ctx context.Context, line *entities.RecipeLine) error {
	rec := recipeToRecord(line)
	what := describe("recipe line %s", line.Key())
	if rec.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return translateError(err, what)
		}
		line.ID = rec.ID
		return nil
	}
	return updateRow(ctx, r.db, rec.ID, &rec, what)
}
