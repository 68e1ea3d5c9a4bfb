// Package services – ResolutionService
//
// This file implements the resolution orchestrator: one end-to-end run per
// query id, from record lookup through classification, provider fetch,
// synopsis, final answer, persistence, and streamed delivery.
//
// Stages run strictly in order and each stage gets at most one attempt.
// Every stage failure is converted to a terminal streamed event with a
// stable message, so the caller's connection always receives a well-formed
// close. An already-answered record short-circuits to a single replay event
// without consuming budget or touching any backend.
//
// The pipeline runs on a context detached from the caller's connection:
// a disconnect tears down delivery only, while in-flight backend calls run
// to completion and their result is still persisted.
package services

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/web3insight/go-insight-backend/internal/cache"
	"github.com/web3insight/go-insight-backend/internal/classify"
	"github.com/web3insight/go-insight-backend/internal/domain"
	"github.com/web3insight/go-insight-backend/internal/llm"
	"github.com/web3insight/go-insight-backend/internal/repo"
	"github.com/web3insight/go-insight-backend/internal/stream"
)

// Terminal event messages. Stable strings the frontend matches on.
const (
	msgNoSubject       = "No identifiable subject in this query."
	msgDataUnavailable = "Unable to fetch information."
	msgGenerationError = "An unexpected error occurred while generating the answer."
)

// resolutions counts finished pipelines by outcome. Outcomes are the
// terminal states of the resolution state machine plus "replayed" for the
// short-circuit path.
var resolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolution_outcomes_total",
		Help: "Total number of finished query resolutions by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(resolutions)
}

// ResolutionService coordinates a full resolution for one query id.
type ResolutionService struct {
	DB         *gorm.DB
	Classifier *classify.Classifier
	Cache      *cache.ProviderCache
	Engine     *llm.Engine

	// EventBuffer sizes each subscription's channel.
	EventBuffer int
}

// Resolve starts (or replays) the resolution for queryID and returns the
// subscription delivering its events. ErrQueryNotFound is the only
// synchronous failure; everything downstream arrives as a terminal event.
//
// The caller owns the subscription and must Cancel it on disconnect.
func (s *ResolutionService) Resolve(ctx context.Context, queryID string) (*stream.Subscription, error) {
	tr := otel.Tracer("services/ResolutionService")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(attribute.String("query.id", queryID)),
	)
	defer span.End()

	q, err := repo.GetQuery(ctx, s.DB, queryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueryNotFound
		}
		return nil, err
	}

	sub := stream.NewSubscription(s.EventBuffer)

	// Short-circuit: an answered record replays in exactly one event, with
	// no budget consumption and no backend calls.
	if q.Answered() {
		sub.Publish(stream.Event{Content: *q.Answer})
		sub.Close()
		resolutions.WithLabelValues("replayed").Inc()
		return sub, nil
	}

	// Detach from the caller's connection: cancellation stops delivery,
	// not computation. Backend calls carry their own timeouts.
	go s.run(context.WithoutCancel(ctx), q, sub)

	return sub, nil
}

// run executes the pipeline stages for one unanswered record and always
// closes the subscription when it returns.
func (s *ResolutionService) run(ctx context.Context, q *domain.Query, sub *stream.Subscription) {
	defer sub.Close()

	tr := otel.Tracer("services/ResolutionService")
	ctx, span := tr.Start(ctx, "run",
		trace.WithAttributes(attribute.String("query.id", q.ID)),
	)
	defer span.End()

	res := s.classification(ctx, q)
	if res.Kind == classify.KindUnclassified {
		sub.Publish(stream.Event{Error: msgNoSubject})
		resolutions.WithLabelValues("no_subject").Inc()
		return
	}
	span.SetAttributes(attribute.String("classify.kind", res.Kind.String()))

	payload, err := s.Cache.Fetch(ctx, res.Kind, res.Identifier)
	if err != nil {
		log.Warn().Err(err).Str("query_id", q.ID).Str("identifier", res.Identifier).Msg("provider fetch failed")
		sub.Publish(stream.Event{Error: msgDataUnavailable})
		resolutions.WithLabelValues("data_unavailable").Inc()
		return
	}

	synopsis, err := s.Engine.Summarize(ctx, res.Kind, payload)
	if err != nil {
		log.Error().Err(err).Str("query_id", q.ID).Msg("synopsis generation failed")
		sub.Publish(stream.Event{Error: msgGenerationError})
		resolutions.WithLabelValues("generation_error").Inc()
		return
	}

	answer, err := s.Engine.ComposeAnswer(ctx, synopsis, q.Text)
	if err != nil {
		log.Error().Err(err).Str("query_id", q.ID).Msg("answer generation failed")
		sub.Publish(stream.Event{Error: msgGenerationError})
		resolutions.WithLabelValues("generation_error").Inc()
		return
	}

	// First writer wins; a racing resolution's committed answer replaces
	// ours so both callers see byte-identical text.
	final, err := repo.SetAnswerIfNull(ctx, s.DB, q.ID, answer, []string{"citation:0"})
	if err != nil {
		log.Error().Err(err).Str("query_id", q.ID).Msg("answer persist failed")
		sub.Publish(stream.Event{Error: msgGenerationError})
		resolutions.WithLabelValues("persist_error").Inc()
		return
	}

	sub.Publish(stream.Event{Content: final})
	resolutions.WithLabelValues("answered").Inc()
}

// classification resolves the record's subject, preferring the keyword
// extracted at submission time and falling back to a fresh classification
// of the raw text for records created before classification existed.
func (s *ResolutionService) classification(ctx context.Context, q *domain.Query) classify.Result {
	if q.Keyword != nil && *q.Keyword != "" {
		if r := classify.Parse(*q.Keyword); r.Kind != classify.KindUnclassified {
			return r
		}
		// A stored keyword with no recognizable shape is a bare login.
		return classify.Result{Kind: classify.KindGitHubUser, Identifier: *q.Keyword}
	}
	return s.Classifier.Classify(ctx, q.Text)
}
