// Package repository holds the gorm-backed stores behind the auth engine and
// the management services.
package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"iam/internal/events"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps gorm sentinels onto the package's own.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// ListOptions controls paging and ordering for Base.List. A zero Limit returns everything.
type ListOptions struct {
	Page     int
	Limit    int
	OrderBy  string
	Desc     bool
	Filters  map[string]interface{}
	Includes []string
}

// Base implements the listing and creation shared by every repository.
type Base[T any] struct {
	db *gorm.DB
}

func NewBase[T any](db *gorm.DB) Base[T] {
	return Base[T]{db: db}
}

func GormTableName(db *gorm.DB, v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return db.NamingStrategy.TableName(t.Name())
}

// applyIncludes adds preload statements to the query for each include
func applyIncludes(query *gorm.DB, includes ...string) *gorm.DB {
	for _, include := range includes {
		query = query.Preload(include)
	}
	return query
}

func (b Base[T]) Create(ctx context.Context, entity *T) error {
	if err := b.db.WithContext(ctx).Create(entity).Error; err != nil {
		return translate(err)
	}
	events.Emit(fmt.Sprintf("%s.created", GormTableName(b.db, entity)), entity)
	return nil
}

func (b Base[T]) Get(ctx context.Context, id string, includes ...string) (*T, error) {
	var entity T
	if err := applyIncludes(b.db.WithContext(ctx), includes...).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (b Base[T]) List(ctx context.Context, opts ListOptions) ([]T, int64, error) {
	var entities []T
	var total int64
	var model T

	query := b.db.WithContext(ctx).Model(&model)
	for key, value := range opts.Filters {
		query = query.Where(key+" = ?", value)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyIncludes(query, opts.Includes...)
	if opts.Page > 0 && opts.Limit > 0 {
		query = query.Offset((opts.Page - 1) * opts.Limit).Limit(opts.Limit)
	}
	if opts.OrderBy != "" {
		dir := "ASC"
		if opts.Desc {
			dir = "DESC"
		}
		query = query.Order(fmt.Sprintf("%s %s", sanitizeColumn(opts.OrderBy), dir))
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// sanitizeColumn keeps identifiers only, so OrderBy never carries SQL.
func sanitizeColumn(col string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		}
		return -1
	}, col)
}
