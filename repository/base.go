// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 100

// filterFunc narrows a query to the rows matching filter F
type filterFunc[F any] func(query *gorm.DB, filter F) *gorm.DB

// BaseRepository implements the generic Repository[T,F] operations for one table.
// Entity repositories embed it and supply their filter translation.
type BaseRepository[T any, F any] struct {
	DB           *gorm.DB
	entity       string
	defaultOrder string
	applyFilter  filterFunc[F]
}

// NewBaseRepository creates a base repository. entity names the rows in error messages.
func NewBaseRepository[T any, F any](db *gorm.DB, entity, defaultOrder string, apply filterFunc[F]) *BaseRepository[T, F] {
	return &BaseRepository[T, F]{
		DB:           db,
		entity:       entity,
		defaultOrder: defaultOrder,
		applyFilter:  apply,
	}
}

// TxFromContext returns the transaction stored by WithTransaction, if any
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(TxContextKey).(*gorm.DB)
	return tx, ok && tx != nil
}

func (r *BaseRepository[T, F]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

func (r *BaseRepository[T, F]) query(ctx context.Context, filter F) *gorm.DB {
	return r.applyFilter(r.getDB(ctx).Model(new(T)), filter)
}

// write runs fn inside the caller's transaction, or in a new one it commits itself
func (r *BaseRepository[T, F]) write(ctx context.Context, fn func(db *gorm.DB) error) error {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(tx.WithContext(ctx))
	}
	return r.DB.WithContext(ctx).Transaction(fn)
}

// ByID retrieves an entity by its ID. A missing row is (nil, nil).
func (r *BaseRepository[T, F]) ByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.getDB(ctx).Where("id = ?", id).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s %s: %w", r.entity, id, err)
	}
	return &entity, nil
}

// ByFilter lists entities matching filter. An empty orderBy uses the table's default order.
func (r *BaseRepository[T, F]) ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error) {
	q := paginate(r.query(ctx, filter), orderBy, r.defaultOrder, limit, offset)

	var rows []*T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", r.entity, err)
	}
	return rows, nil
}

// first returns the first entity matching filter, or nil
func (r *BaseRepository[T, F]) first(ctx context.Context, filter F) (*T, error) {
	rows, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Count returns the number of entities matching filter
func (r *BaseRepository[T, F]) Count(ctx context.Context, filter F) (int64, error) {
	var count int64
	if err := r.query(ctx, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %ss: %w", r.entity, err)
	}
	return count, nil
}

// Exists reports whether any entity matches filter
func (r *BaseRepository[T, F]) Exists(ctx context.Context, filter F) (bool, error) {
	c, err := r.Count(ctx, filter)
	return c > 0, err
}

// Save inserts a new entity
func (r *BaseRepository[T, F]) Save(ctx context.Context, entity *T) error {
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.Create(entity).Error; err != nil {
			return fmt.Errorf("failed to save %s: %w", r.entity, err)
		}
		return nil
	})
}

// SaveBatch inserts entities in batches within one transaction
func (r *BaseRepository[T, F]) SaveBatch(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.CreateInBatches(entities, batchSize).Error; err != nil {
			return fmt.Errorf("failed to save %s batch: %w", r.entity, err)
		}
		return nil
	})
}

// insertMissing inserts rows and skips those whose key already exists
func insertMissing[T any](db *gorm.DB, rows []T, what string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("seed %s: %w", what, err)
	}
	return nil
}

// paginate applies ordering and paging to a query
func paginate(query *gorm.DB, orderBy, defaultOrder string, limit, offset int) *gorm.DB {
	if orderBy == "" {
		orderBy = defaultOrder
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// WithTransaction executes fn within a database transaction. Repositories called with the
// context passed to fn join the transaction instead of opening their own.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(context.Context) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, TxContextKey, tx))
	})
}
