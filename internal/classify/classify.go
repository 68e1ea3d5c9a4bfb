// Package classify determines what kind of subject a free-text query refers
// to and extracts its canonical identifier. Classification is a closed set of
// kinds (EVM address, GitHub repository, GitHub user, unclassified) resolved
// once at the orchestrator boundary; downstream components receive the
// already-resolved variant instead of re-deriving it from strings.
//
// Fast, deterministic shape checks run first. Only when they fail is the
// text handed to a language-model extractor that pulls out the most likely
// identifier token, which is then re-parsed through the same shape checks.
package classify

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Kind is the closed set of subject types a query can resolve to.
type Kind int

const (
	// KindUnclassified means no identifiable subject was found.
	KindUnclassified Kind = iota
	// KindEVMAddress is a 0x address or ENS name.
	KindEVMAddress
	// KindGitHubRepo is an "owner/name" repository path.
	KindGitHubRepo
	// KindGitHubUser is a bare GitHub login.
	KindGitHubUser
)

// String returns a stable label for logging and metrics.
func (k Kind) String() string {
	switch k {
	case KindEVMAddress:
		return "evm_address"
	case KindGitHubRepo:
		return "github_repo"
	case KindGitHubUser:
		return "github_user"
	default:
		return "unclassified"
	}
}

// Result pairs the resolved kind with the canonical identifier string.
// Identifier is empty exactly when Kind is KindUnclassified.
type Result struct {
	Kind       Kind
	Identifier string
}

// KeywordExtractor is the fuzzy second-pass contract: given free text it
// returns the single most relevant identifier token, or an empty string when
// nothing matches. Implementations are expected to call a language model.
type KeywordExtractor interface {
	ExtractKeyword(ctx context.Context, text string) (string, error)
}

// ensSuffix is the reserved name-service suffix treated as an EVM subject.
const ensSuffix = ".eth"

// evmAddressRE matches a well-formed 20-byte hex address. Mixed case is
// accepted; checksum validation is the provider's concern.
var evmAddressRE = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsEVMAddress reports whether s is a well-formed 0x-prefixed EVM address.
func IsEVMAddress(s string) bool { return evmAddressRE.MatchString(s) }

// IsENSName reports whether s carries the name-service suffix.
func IsENSName(s string) bool {
	return len(s) > len(ensSuffix) && strings.HasSuffix(strings.ToLower(s), ensSuffix)
}

// IsRepoPath reports whether s has an "owner/name" shape: exactly one path
// separator between two non-empty segments.
func IsRepoPath(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	if !ok {
		return false
	}
	return owner != "" && name != "" && !strings.Contains(name, "/")
}

// Parse applies the deterministic shape rules to s without any backend call.
// It returns KindUnclassified when no rule matches; callers decide whether to
// fall through to the extractor pass.
func Parse(s string) Result {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Result{Kind: KindUnclassified}
	case IsEVMAddress(s) || IsENSName(s):
		return Result{Kind: KindEVMAddress, Identifier: s}
	case IsRepoPath(s):
		return Result{Kind: KindGitHubRepo, Identifier: s}
	default:
		return Result{Kind: KindUnclassified}
	}
}

// Classifier resolves query text to a classification result, using the
// extractor as a fallback for text that carries no recognizable shape.
type Classifier struct {
	Extractor KeywordExtractor
}

// New constructs a Classifier around the given extractor.
func New(x KeywordExtractor) *Classifier {
	return &Classifier{Extractor: x}
}

// Classify resolves text per the decision order: well-formed address or ENS
// name first, then repository path, then the extractor pass. An extractor
// failure or timeout is not retried; it degrades to KindUnclassified so the
// orchestrator can report "no identifiable subject" instead of failing the
// whole request.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	tr := otel.Tracer("classify/Classifier")
	ctx, span := tr.Start(ctx, "Classify")
	defer span.End()

	text = strings.TrimSpace(text)
	if r := Parse(text); r.Kind != KindUnclassified {
		span.SetAttributes(attribute.String("classify.kind", r.Kind.String()))
		return r
	}
	if text == "" || c.Extractor == nil {
		return Result{Kind: KindUnclassified}
	}

	token, err := c.Extractor.ExtractKeyword(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "keyword extraction failed")
		return Result{Kind: KindUnclassified}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Result{Kind: KindUnclassified}
	}

	r := Parse(token)
	if r.Kind == KindUnclassified {
		// A bare non-empty token is treated as a GitHub login.
		r = Result{Kind: KindGitHubUser, Identifier: token}
	}
	span.SetAttributes(
		attribute.String("classify.kind", r.Kind.String()),
		attribute.String("classify.identifier", r.Identifier),
	)
	return r
}
