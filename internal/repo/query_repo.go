// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Query
// record.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a query is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// The one non-CRUD shape here is SetAnswerIfNull: the final answer write is
// a conditional update ("set answer only if currently null") so that two
// racing resolutions for the same id cannot lose each other's write. The
// first writer wins; the loser reads back and returns the committed value.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/web3insight/go-insight-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateQuery inserts a new Query row with the given text and extracted
// keyword. ownerID is nil for anonymous submissions. The id is a randomly
// generated UUID (string), and CreatedAt is set to UTC.
func CreateQuery(ctx context.Context, db *gorm.DB, ownerID *string, text, keyword string) (*domain.Query, error) {
	q := &domain.Query{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      text,
		Citations: "[]",
		CreatedAt: time.Now().UTC(),
	}
	if keyword != "" {
		q.Keyword = &keyword
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuery fetches a single query by id, or ErrNotFound if missing.
func GetQuery(ctx context.Context, db *gorm.DB, id string) (*domain.Query, error) {
	var q domain.Query
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQueriesPage returns a page of queries owned by ownerID, most recent
// first. Use CountQueries to obtain the total for pagination metadata.
func ListQueriesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Query, error) {
	var out []domain.Query
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountQueries returns the total number of queries owned by ownerID.
func CountQueries(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Query{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// ListPinnedQueries returns the globally pinned queries, most recent first.
func ListPinnedQueries(ctx context.Context, db *gorm.DB) ([]domain.Query, error) {
	var out []domain.Query
	err := db.WithContext(ctx).
		Where("pin = ?", true).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// SetKeyword records the classifier's extracted identifier on the query.
// Reclassification overwrites; the keyword is derived state, not history.
func SetKeyword(ctx context.Context, db *gorm.DB, id, keyword string) error {
	res := db.WithContext(ctx).
		Model(&domain.Query{}).
		Where("id = ?", id).
		Update("keyword", keyword)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAnswerIfNull persists the final answer and citations only when no
// answer has been committed yet. It returns the answer text now on record:
// the given one if this writer won, or the previously committed one if a
// concurrent resolution got there first.
func SetAnswerIfNull(ctx context.Context, db *gorm.DB, id, answer string, citations []string) (string, error) {
	res := db.WithContext(ctx).
		Model(&domain.Query{}).
		Where("id = ? AND answer IS NULL", id).
		Updates(map[string]any{
			"answer":    answer,
			"citations": domain.EncodeCitations(citations),
		})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return answer, nil
	}

	// Lost the race (or the record is gone); read back the committed value.
	q, err := GetQuery(ctx, db, id)
	if err != nil {
		return "", err
	}
	if !q.Answered() {
		// Row exists but the conditional update matched nothing and no
		// answer is present: the record was soft-deleted mid-flight.
		return "", errors.New("answer write matched no row")
	}
	return *q.Answer, nil
}
