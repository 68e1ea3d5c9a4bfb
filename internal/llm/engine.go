package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/web3insight/go-insight-backend/internal/classify"
)

// extractionTopP narrows sampling for the deterministic-ish passes
// (keyword extraction and payload analysis).
const extractionTopP = 0.5

// Engine drives the three model passes of a resolution on one Generator.
// It implements classify.KeywordExtractor for the classifier's fuzzy pass.
type Engine struct {
	gen       Generator
	maxTokens int
}

// NewEngine wires a Generator with the per-call output-token ceiling.
func NewEngine(gen Generator, maxTokens int) *Engine {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Engine{gen: gen, maxTokens: maxTokens}
}

// ExtractKeyword asks the model for the single most relevant identifier
// token in text, trimmed. An empty string means no match.
func (e *Engine) ExtractKeyword(ctx context.Context, text string) (string, error) {
	tr := otel.Tracer("llm/Engine")
	ctx, span := tr.Start(ctx, "ExtractKeyword")
	defer span.End()

	out, err := e.gen.Generate(ctx, keywordExtractorSystem, text, e.maxTokens, extractionTopP)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Summarize turns a provider payload into a condensed synopsis using the
// kind-specific instruction template. Outputs are never cached; every
// resolution recomputes the synopsis from the payload at hand. Backend
// failures propagate as ErrGeneration.
func (e *Engine) Summarize(ctx context.Context, kind classify.Kind, payload json.RawMessage) (string, error) {
	tr := otel.Tracer("llm/Engine")
	ctx, span := tr.Start(ctx, "Summarize")
	defer span.End()
	span.SetAttributes(attribute.String("entity.kind", kind.String()))

	out, err := e.gen.Generate(ctx, analysisSystem, analysisPrompt(kind, string(payload)), e.maxTokens, extractionTopP)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%w: empty synopsis", ErrGeneration)
	}
	return out, nil
}

// ComposeAnswer produces the final answer from the citation-tagged synopsis
// and the original query text, using the persona/style template.
func (e *Engine) ComposeAnswer(ctx context.Context, synopsis, query string) (string, error) {
	tr := otel.Tracer("llm/Engine")
	ctx, span := tr.Start(ctx, "ComposeAnswer")
	defer span.End()

	cited := fmt.Sprintf("[[citation:0]] %s", synopsis)
	out, err := e.gen.Generate(ctx, answerSystem(cited), query, e.maxTokens, 0)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%w: empty answer", ErrGeneration)
	}
	return out, nil
}
