// Package services – QueryService
//
// This file implements QueryService, which owns the submission side of the
// pipeline: rate-limit consumption, input validation, classification, and
// creation of the Query record. It also serves the read paths used by the
// UI shell (single record, per-owner history, pinned queries).
//
// Submission order is fixed: the caller's budget is consumed before any
// model work happens, and a submission that yields no identifiable subject
// is rejected without ever touching a data provider.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/web3insight/go-insight-backend/internal/classify"
	"github.com/web3insight/go-insight-backend/internal/domain"
	"github.com/web3insight/go-insight-backend/internal/limiter"
	"github.com/web3insight/go-insight-backend/internal/repo"
	"github.com/web3insight/go-insight-backend/internal/utils"
)

// Identity captures who is submitting: an authenticated user id, or the
// client network address for anonymous callers.
type Identity struct {
	UserID   string // empty for anonymous callers
	ClientIP string
}

// Authenticated reports whether the caller carries a user id.
func (id Identity) Authenticated() bool { return id.UserID != "" }

// Key returns the rate-limit bucket key for this identity.
func (id Identity) Key() string {
	if id.Authenticated() {
		return id.UserID
	}
	if id.ClientIP != "" {
		return id.ClientIP
	}
	return "unknown"
}

// QueryService coordinates query submission and record reads.
type QueryService struct {
	DB         *gorm.DB
	Classifier *classify.Classifier

	// GuestLimiter and UserLimiter are the two point budgets; the caller's
	// authentication state selects which one a submission consumes from.
	GuestLimiter *limiter.PointsLimiter
	UserLimiter  *limiter.PointsLimiter

	// MaxQueryRunes caps submissions by rune length.
	MaxQueryRunes int
}

// Submit runs the submission half of the pipeline: consume budget,
// validate, classify, persist. On success the returned record carries the
// extracted keyword and a nil answer.
func (s *QueryService) Submit(ctx context.Context, id Identity, text string) (*domain.Query, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.Bool("caller.authenticated", id.Authenticated())),
	)
	defer span.End()

	// Budget first: an exhausted identity gets no model or provider work.
	lim := s.GuestLimiter
	if id.Authenticated() {
		lim = s.UserLimiter
	}
	if err := lim.Consume(ctx, id.Key()); err != nil {
		if errors.Is(err, limiter.ErrLimitExceeded) {
			return nil, &RateLimitError{Authenticated: id.Authenticated()}
		}
		return nil, wrap("rate check", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if s.MaxQueryRunes > 0 && utf8.RuneCountInString(text) > s.MaxQueryRunes {
		return nil, ErrQueryTooLong
	}

	res := s.Classifier.Classify(ctx, text)
	if res.Kind == classify.KindUnclassified {
		return nil, ErrNoSubject
	}
	span.SetAttributes(attribute.String("classify.kind", res.Kind.String()))

	var owner *string
	if id.Authenticated() {
		uid := id.UserID
		owner = &uid
	}
	q, err := repo.CreateQuery(ctx, s.DB, owner, text, res.Identifier)
	if err != nil {
		return nil, wrap("persist", err)
	}
	return q, nil
}

// Get returns the query record for id, or ErrQueryNotFound.
func (s *QueryService) Get(ctx context.Context, id string) (*domain.Query, error) {
	q, err := repo.GetQuery(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueryNotFound
		}
		return nil, err
	}
	return q, nil
}

// HistoryPage returns a page of the owner's past queries, most recent
// first, with the total count for pagination metadata.
func (s *QueryService) HistoryPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Query, int64, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "HistoryPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := utils.PageOffset(page, pageSize)

	total, err := repo.CountQueries(ctx, s.DB, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Query{}, 0, nil
	}

	items, err := repo.ListQueriesPage(ctx, s.DB, ownerID, offset, pageSize)
	return items, total, err
}

// Pinned returns the globally pinned queries shown to anonymous visitors.
func (s *QueryService) Pinned(ctx context.Context) ([]domain.Query, error) {
	return repo.ListPinnedQueries(ctx, s.DB)
}
