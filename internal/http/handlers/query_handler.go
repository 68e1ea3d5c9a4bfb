// Query HTTP handlers.
//
// This file exposes REST endpoints for query submission and reads:
//   - POST /queries       (submit a query: rate check, classify, persist)
//   - GET  /queries/{id}  (fetch one query record)
//   - GET  /queries       (pinned queries plus the caller's history)
//
// Handlers are transport-thin: they normalize inputs, derive the caller
// identity (X-User-ID header when present, client IP otherwise), delegate
// to QueryService, and map service errors to the stable error taxonomy.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/web3insight/go-insight-backend/internal/domain"
	"github.com/web3insight/go-insight-backend/internal/services"
	"github.com/web3insight/go-insight-backend/internal/stream"
	"github.com/web3insight/go-insight-backend/internal/utils"
)

// QueryService is the submission/read contract consumed by the handlers.
type QueryService interface {
	Submit(ctx context.Context, id services.Identity, text string) (*domain.Query, error)
	Get(ctx context.Context, id string) (*domain.Query, error)
	HistoryPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Query, int64, error)
	Pinned(ctx context.Context) ([]domain.Query, error)
}

// Resolver is the resolution contract consumed by the completion handler.
type Resolver interface {
	Resolve(ctx context.Context, queryID string) (*stream.Subscription, error)
}

// Handlers bundles the services behind the public API.
type Handlers struct {
	querySvc QueryService
	resolver Resolver

	// maxQueryRunes mirrors the service-side ceiling for fast edge rejection.
	maxQueryRunes int
}

// New constructs the handler set.
func New(querySvc QueryService, resolver Resolver, maxQueryRunes int) *Handlers {
	if maxQueryRunes <= 0 {
		maxQueryRunes = 100
	}
	return &Handlers{querySvc: querySvc, resolver: resolver, maxQueryRunes: maxQueryRunes}
}

// identity derives the caller identity: the X-User-ID header when present
// (set by the auth proxy in front of this service), the client IP otherwise.
func identity(c *gin.Context) services.Identity {
	return services.Identity{
		UserID:   strings.TrimSpace(c.GetHeader("X-User-ID")),
		ClientIP: c.ClientIP(),
	}
}

//
// DTOs
//

// SubmitQueryRequest is the JSON payload for submitting a query.
type SubmitQueryRequest struct {
	// Query is the free-form question text. It must be non-empty.
	Query string `json:"query" binding:"required,min=1" example:"analyze pseudoyu/yu-tools"`
}

// SubmitQueryResponse is the JSON envelope for an accepted submission.
type SubmitQueryResponse struct {
	ID      string `json:"id"      example:"7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab"`
	Keyword string `json:"keyword" example:"pseudoyu/yu-tools"`
}

// QueryListItem is one entry in the history/pinned listings.
type QueryListItem struct {
	ID    string `json:"id"`
	Query string `json:"query"`
	Title string `json:"title"`
}

// ListQueriesResponse contains pinned queries and the caller's history page.
type ListQueriesResponse struct {
	Pinned     []QueryListItem `json:"pinned"`
	History    []QueryListItem `json:"history"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

//
// Handlers
//

// SubmitQuery godoc
// @ID          submitQuery
// @Summary     Submit a query
// @Description Consumes one rate-limit point, classifies the text, and creates
// @Description a query record ready for resolution via the completion stream.
// @Tags        Queries
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string false "Authenticated user id (anonymous callers omit it)" example(user123)
// @Param       body body handlers.SubmitQueryRequest true "Query payload"
// @Success     201 {object} handlers.SubmitQueryResponse "Accepted submission"
// @Failure     400 {object} handlers.ErrorResponse "Invalid or unclassifiable input"
// @Failure     429 {object} handlers.ErrorResponse "Budget exhausted"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /queries [post]
func (h *Handlers) SubmitQuery(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		return
	}

	q, err := h.querySvc.Submit(ctx, identity(c), req.Query)
	if err != nil {
		if rle, isRate := services.AsRateLimitError(err); isRate {
			code := ErrCodeSigninNeeded
			if rle.Authenticated {
				code = ErrCodeReachMaximized
			}
			c.Header("Retry-After", "3600")
			fail(c, http.StatusTooManyRequests, code, rle.Error())
			return
		}
		switch {
		case err == services.ErrEmptyQuery:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		case err == services.ErrQueryTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("query too long: max %d runes", h.maxQueryRunes))
		case err == services.ErrNoSubject:
			fail(c, http.StatusBadRequest, ErrCodeNoSubject, "no identifiable subject in query")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
		}
		return
	}

	keyword := ""
	if q.Keyword != nil {
		keyword = *q.Keyword
	}
	ok(c, http.StatusCreated, SubmitQueryResponse{ID: q.ID, Keyword: keyword})
}

// GetQuery godoc
// @ID          getQuery
// @Summary     Fetch a query record
// @Tags        Queries
// @Produce     json
// @Param       id path string true "Query ID (UUID)" format(uuid)
// @Success     200 {object} domain.Query "Query record"
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     404 {object} handlers.ErrorResponse "Query not found"
// @Router      /queries/{id} [get]
func (h *Handlers) GetQuery(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query id must be a UUID")
		return
	}

	q, err := h.querySvc.Get(c.Request.Context(), id)
	if err != nil {
		if err == services.ErrQueryNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "query not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, q)
}

// ListQueries godoc
// @ID          listQueries
// @Summary     List pinned queries and the caller's history
// @Description Pinned queries are global; history requires the X-User-ID
// @Description header and is paginated (page, page_size).
// @Tags        Queries
// @Produce     json
// @Param       X-User-ID header string false "Authenticated user id" example(user123)
// @Param       page query int false "Page (1-based)" default(1)
// @Param       page_size query int false "Page size" default(10)
// @Success     200 {object} handlers.ListQueriesResponse "Listings"
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /queries [get]
func (h *Handlers) ListQueries(c *gin.Context) {
	ctx := c.Request.Context()

	pinned, err := h.querySvc.Pinned(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	resp := ListQueriesResponse{
		Pinned:  toListItems(pinned),
		History: []QueryListItem{},
	}

	if id := identity(c); id.Authenticated() {
		page, pageSize := clampPagination(c)
		items, total, err := h.querySvc.HistoryPage(ctx, id.UserID, page, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
		resp.History = toListItems(items)
		resp.Pagination = &Pagination{Page: page, PageSize: pageSize, Total: total}
	}

	ok(c, http.StatusOK, resp)
}

// toListItems projects records into the compact listing shape.
func toListItems(qs []domain.Query) []QueryListItem {
	out := make([]QueryListItem, 0, len(qs))
	for _, q := range qs {
		out = append(out, QueryListItem{
			ID:    q.ID,
			Query: q.Text,
			Title: services.HistoryTitle(q.Text),
		})
	}
	return out
}

// clampPagination parses page/page_size from query parameters, applies sane
// defaults and caps, and returns the validated (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 10
		maxPageSize     = 50
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
