package classify

import (
	"context"
	"errors"
	"testing"
)

func TestIsEVMAddress(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", true},
		{"0x0000000000000000000000000000000000000000", true},
		// wrong length
		{"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA9604", false},
		{"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA960455", false},
		// missing prefix / bad chars
		{"d8dA6BF26964aF9D7eEd9e03E53415D37aA96045", false},
		{"0xZZdA6BF26964aF9D7eEd9e03E53415D37aA96045", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsEVMAddress(tc.s); got != tc.want {
			t.Fatalf("IsEVMAddress(%q) = %v; want %v", tc.s, got, tc.want)
		}
	}
}

func TestIsENSName(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"vitalik.eth", true},
		{"Vitalik.ETH", true}, // suffix match is case-insensitive
		{".eth", false},       // suffix alone is not a name
		{"vitalik", false},
		{"vitalik.ens", false},
	}
	for _, tc := range cases {
		if got := IsENSName(tc.s); got != tc.want {
			t.Fatalf("IsENSName(%q) = %v; want %v", tc.s, got, tc.want)
		}
	}
}

func TestIsRepoPath(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"openbuildxyz/OpenContent", true},
		{"a/b", true},
		{"noslash", false},
		{"/leading", false},
		{"trailing/", false},
		{"too/many/segments", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsRepoPath(tc.s); got != tc.want {
			t.Fatalf("IsRepoPath(%q) = %v; want %v", tc.s, got, tc.want)
		}
	}
}

func TestParse_DecisionOrder(t *testing.T) {
	// Address shape wins before repo, even with surrounding whitespace.
	r := Parse("  0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045  ")
	if r.Kind != KindEVMAddress {
		t.Fatalf("expected address kind, got %v", r.Kind)
	}
	if r.Identifier != "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045" {
		t.Fatalf("identifier not trimmed: %q", r.Identifier)
	}

	if r := Parse("vitalik.eth"); r.Kind != KindEVMAddress {
		t.Fatalf("ENS should classify as EVM subject, got %v", r.Kind)
	}
	if r := Parse("openbuildxyz/OpenContent"); r.Kind != KindGitHubRepo {
		t.Fatalf("expected repo kind, got %v", r.Kind)
	}
	// Bare tokens are NOT resolved by Parse; that choice belongs to the
	// extractor fallback.
	if r := Parse("pseudoyu"); r.Kind != KindUnclassified {
		t.Fatalf("bare token should stay unclassified in Parse, got %v", r.Kind)
	}
	if r := Parse(""); r.Kind != KindUnclassified || r.Identifier != "" {
		t.Fatalf("empty input must be unclassified with empty identifier")
	}
}

type fakeExtractor struct {
	token string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractKeyword(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.token, f.err
}

func TestClassify_ShapeShortCircuitSkipsExtractor(t *testing.T) {
	fx := &fakeExtractor{token: "never"}
	c := New(fx)

	r := c.Classify(context.Background(), "openbuildxyz/OpenContent")
	if r.Kind != KindGitHubRepo || r.Identifier != "openbuildxyz/OpenContent" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if fx.calls != 0 {
		t.Fatalf("extractor must not run for shaped input, got %d calls", fx.calls)
	}
}

func TestClassify_ExtractorFallback(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		err    error
		want   Kind
		wantID string
	}{
		{"bare token becomes github user", "pseudoyu", nil, KindGitHubUser, "pseudoyu"},
		{"extracted repo path", "openbuildxyz/OpenContent", nil, KindGitHubRepo, "openbuildxyz/OpenContent"},
		{"extracted address", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", nil, KindEVMAddress, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"},
		{"empty token", "", nil, KindUnclassified, ""},
		{"whitespace token", "   ", nil, KindUnclassified, ""},
		{"extractor error degrades", "", errors.New("model down"), KindUnclassified, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := &fakeExtractor{token: tc.token, err: tc.err}
			c := New(fx)
			r := c.Classify(context.Background(), "what is happening with starknet lately")
			if r.Kind != tc.want || r.Identifier != tc.wantID {
				t.Fatalf("got %+v; want kind=%v id=%q", r, tc.want, tc.wantID)
			}
			if fx.calls != 1 {
				t.Fatalf("extractor calls = %d; want 1 (no retry)", fx.calls)
			}
		})
	}
}

func TestClassify_EmptyInputNeverCallsExtractor(t *testing.T) {
	fx := &fakeExtractor{token: "x"}
	c := New(fx)
	if r := c.Classify(context.Background(), "   "); r.Kind != KindUnclassified {
		t.Fatalf("expected unclassified, got %+v", r)
	}
	if fx.calls != 0 {
		t.Fatalf("extractor must not run on empty input")
	}
}

func TestKindString(t *testing.T) {
	if KindEVMAddress.String() != "evm_address" ||
		KindGitHubRepo.String() != "github_repo" ||
		KindGitHubUser.String() != "github_user" ||
		KindUnclassified.String() != "unclassified" {
		t.Fatalf("unexpected Kind labels")
	}
}
