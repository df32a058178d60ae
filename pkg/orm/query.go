// Package orm is a thin, chainable wrapper over the global GORM handle with
// Redis-backed query caching and offset pagination baked in.
package orm

import (
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"gorm.io/gorm"
)

type Query struct {
	db *gorm.DB
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func DB() *Query {
	return &Query{db: database.DB}
}

// With wraps an existing gorm handle (e.g. a transaction).
func With(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Preload(relation string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(relation, args...)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Offset(n int) *Query {
	return &Query{db: q.db.Offset(n)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

func (q *Query) Delete(v interface{}) error {
	return q.db.Delete(v).Error
}

// GetWithPagination fills dest with one page of results and returns the page
// metadata. page is 1-based; per defaults to 15.
func (q *Query) GetWithPagination(dest interface{}, page, per int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if per < 1 {
		per = 15
	}

	total, err := q.Count()
	if err != nil {
		return Pagination{}, err
	}

	if err := q.db.Limit(per).Offset((page - 1) * per).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	pages := int((total + int64(per) - 1) / int64(per))
	return Pagination{Page: page, PerPage: per, Total: total, TotalPages: pages}, nil
}

// Cache runs the query through Redis: on a hit dest is filled from cache, on
// a miss the database is queried and the result stored for ttl.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if cache.Get(key, dest) {
		return nil
	}

	err := q.db.Find(dest).Error
	if err != nil {
		return err
	}

	cache.Set(key, dest, ttl)
	return nil
}
