package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/bomplan/pkg/domain/repositories"
)

var _ repositories.Store = (*Store)(nil)

// Store implements repositories.Store on a gorm connection
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Items() repositories.ItemRepository { return &ItemRepository{db: s.db} }

func (s *Store) Recipes() repositories.RecipeRepository { return &RecipeRepository{db: s.db} }

func (s *Store) StockOnHand() repositories.SOHRepository { return &SOHRepository{db: s.db} }

func (s *Store) Packing() repositories.PackingRepository { return &PackingRepository{db: s.db} }

func (s *Store) Filling() repositories.FillingRepository { return &FillingRepository{db: s.db} }

func (s *Store) Production() repositories.ProductionRepository {
	return &ProductionRepository{db: s.db}
}

// Transaction runs fn in a database transaction. Nested calls become savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE
func forUpdate(db *gorm.DB) *gorm.DB {
	switch db.Dialector.Name() {
	case "postgres", "mysql":
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	default:
		return db
	}
}

// updateRow overwrites every column of the row with the given id
func updateRow[R any](ctx context.Context, db *gorm.DB, id uint, rec *R, what string) error {
	var count int64
	if err := db.WithContext(ctx).Model(new(R)).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err, what)
	}
	if count == 0 {
		return translateError(gorm.ErrRecordNotFound, what)
	}
	err := db.WithContext(ctx).Model(new(R)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(rec).Error
	return translateError(err, what)
}

// deleteRow removes the row with the given id
func deleteRow[R any](ctx context.Context, db *gorm.DB, id uint, what string) error {
	res := db.WithContext(ctx).Delete(new(R), id)
	if res.Error != nil {
		return translateError(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, what)
	}
	return nil
}

func describe(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
