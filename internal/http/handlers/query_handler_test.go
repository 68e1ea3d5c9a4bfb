package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/web3insight/go-insight-backend/internal/domain"
	"github.com/web3insight/go-insight-backend/internal/services"
	"github.com/web3insight/go-insight-backend/internal/stream"
)

// fakeQuerySvc scripts the QueryService contract.
type fakeQuerySvc struct {
	submitQ   *domain.Query
	submitErr error
	lastID    services.Identity
	lastText  string

	getQ   *domain.Query
	getErr error

	history     []domain.Query
	historyTot  int64
	historyErr  error
	lastPage    int
	lastPerPage int

	pinned    []domain.Query
	pinnedErr error
}

func (f *fakeQuerySvc) Submit(ctx context.Context, id services.Identity, text string) (*domain.Query, error) {
	f.lastID = id
	f.lastText = text
	return f.submitQ, f.submitErr
}

func (f *fakeQuerySvc) Get(ctx context.Context, id string) (*domain.Query, error) {
	return f.getQ, f.getErr
}

func (f *fakeQuerySvc) HistoryPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Query, int64, error) {
	f.lastPage = page
	f.lastPerPage = pageSize
	return f.history, f.historyTot, f.historyErr
}

func (f *fakeQuerySvc) Pinned(ctx context.Context) ([]domain.Query, error) {
	return f.pinned, f.pinnedErr
}

// fakeResolver scripts the Resolver contract.
type fakeResolver struct {
	sub *stream.Subscription
	err error
}

func (f *fakeResolver) Resolve(ctx context.Context, queryID string) (*stream.Subscription, error) {
	return f.sub, f.err
}

func newTestRouter(qs QueryService, rs Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(qs, rs, 100)
	r.POST("/queries", h.SubmitQuery)
	r.GET("/queries", h.ListQueries)
	r.GET("/queries/:id", h.GetQuery)
	r.GET("/queries/:id/completion", h.StreamCompletion)
	return r
}

func strptr(s string) *string { return &s }

func TestSubmitQuery_Created(t *testing.T) {
	svc := &fakeQuerySvc{submitQ: &domain.Query{ID: "id-1", Text: "a/b", Keyword: strptr("a/b")}}
	r := newTestRouter(svc, &fakeResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/queries", strings.NewReader(`{"query":"analyze a/b"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp SubmitQueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "id-1" || resp.Keyword != "a/b" {
		t.Fatalf("resp = %+v", resp)
	}
	if svc.lastID.UserID != "user-1" {
		t.Fatalf("identity not derived from header: %+v", svc.lastID)
	}
	if svc.lastText != "analyze a/b" {
		t.Fatalf("text = %q", svc.lastText)
	}
}

func TestSubmitQuery_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty", services.ErrEmptyQuery, http.StatusBadRequest, ErrCodeBadRequest},
		{"too long", services.ErrQueryTooLong, http.StatusBadRequest, ErrCodeBadRequest},
		{"no subject", services.ErrNoSubject, http.StatusBadRequest, ErrCodeNoSubject},
		{"guest exhausted", &services.RateLimitError{Authenticated: false}, http.StatusTooManyRequests, ErrCodeSigninNeeded},
		{"user exhausted", &services.RateLimitError{Authenticated: true}, http.StatusTooManyRequests, ErrCodeReachMaximized},
		{"internal", errors.New("db broke"), http.StatusInternalServerError, ErrCodeSubmitFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&fakeQuerySvc{submitErr: tc.err}, &fakeResolver{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/queries", strings.NewReader(`{"query":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (%s)", w.Code, tc.wantStatus, w.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("code = %q; want %q", resp.Code, tc.wantCode)
			}
			if tc.wantStatus == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
				t.Fatalf("429 must carry Retry-After")
			}
		})
	}
}

func TestSubmitQuery_MalformedBody(t *testing.T) {
	r := newTestRouter(&fakeQuerySvc{}, &fakeResolver{})

	for _, body := range []string{``, `{}`, `{"query":""}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/queries", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, w.Code)
		}
	}
}

func TestGetQuery_ValidationAndLookup(t *testing.T) {
	id := uuid.NewString()
	svc := &fakeQuerySvc{getQ: &domain.Query{ID: id, Text: "a/b"}}
	r := newTestRouter(svc, &fakeResolver{})

	// Non-UUID ids are rejected before the service runs.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-uuid status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// Unknown records map to 404.
	r404 := newTestRouter(&fakeQuerySvc{getErr: services.ErrQueryNotFound}, &fakeResolver{})
	w = httptest.NewRecorder()
	r404.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing record status = %d", w.Code)
	}
}

func TestListQueries_AnonymousGetsPinnedOnly(t *testing.T) {
	svc := &fakeQuerySvc{pinned: []domain.Query{{ID: "p1", Text: "pinned query"}}}
	r := newTestRouter(svc, &fakeResolver{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp ListQueriesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Pinned) != 1 || resp.Pinned[0].ID != "p1" {
		t.Fatalf("pinned = %+v", resp.Pinned)
	}
	if len(resp.History) != 0 || resp.Pagination != nil {
		t.Fatalf("anonymous caller must get no history: %+v", resp)
	}
}

func TestListQueries_AuthenticatedHistoryAndClamping(t *testing.T) {
	svc := &fakeQuerySvc{
		history:    []domain.Query{{ID: "h1", Text: "what is the starknet ecosystem"}},
		historyTot: 1,
	}
	r := newTestRouter(svc, &fakeResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queries?page=-3&page_size=9999", nil)
	req.Header.Set("X-User-ID", "user-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if svc.lastPage != 1 || svc.lastPerPage != 50 {
		t.Fatalf("pagination not clamped: page=%d size=%d", svc.lastPage, svc.lastPerPage)
	}

	var resp ListQueriesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.History) != 1 || resp.History[0].Title == "" {
		t.Fatalf("history items should carry derived titles: %+v", resp.History)
	}
	if resp.Pagination == nil || resp.Pagination.Total != 1 {
		t.Fatalf("pagination = %+v", resp.Pagination)
	}
}

func TestStreamCompletion_DeliversEventsAsSSE(t *testing.T) {
	sub := stream.NewSubscription(4)
	sub.Publish(stream.Event{Content: "the answer"})
	sub.Close()

	r := newTestRouter(&fakeQuerySvc{}, &fakeResolver{sub: sub})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/"+uuid.NewString()+"/completion", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `{"content":"the answer"}`) {
		t.Fatalf("body missing content event: %q", body)
	}
}

func TestStreamCompletion_ErrorEvent(t *testing.T) {
	sub := stream.NewSubscription(4)
	sub.Publish(stream.Event{Error: "Unable to fetch information."})
	sub.Close()

	r := newTestRouter(&fakeQuerySvc{}, &fakeResolver{sub: sub})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/"+uuid.NewString()+"/completion", nil))

	if !strings.Contains(w.Body.String(), `{"error":"Unable to fetch information."}`) {
		t.Fatalf("body missing error event: %q", w.Body.String())
	}
}

func TestStreamCompletion_SynchronousFailures(t *testing.T) {
	// Bad id shape.
	r := newTestRouter(&fakeQuerySvc{}, &fakeResolver{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/nope/completion", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-uuid status = %d", w.Code)
	}

	// Unknown query.
	r404 := newTestRouter(&fakeQuerySvc{}, &fakeResolver{err: services.ErrQueryNotFound})
	w = httptest.NewRecorder()
	r404.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/queries/"+uuid.NewString()+"/completion", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing query status = %d", w.Code)
	}
}
