package xcrawler

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
)

const (
	// verifiedBonus lifts verified accounts above any similarity difference.
	verifiedBonus = 100
	// confirmTopN is how many ranked candidates a Disambiguator is shown.
	confirmTopN = 3
	// DefaultAmbiguityMargin is the score gap (verified bonus plus name
	// similarity) under which the runner-up is a real contender.
	DefaultAmbiguityMargin = 10
)

// AccountSource is the subset of Client the resolver needs.
type AccountSource interface {
	GetUserByUsername(ctx context.Context, username string) (*Account, error)
	SearchAccounts(ctx context.Context, query string, limit int) ([]Account, error)
}

// Disambiguator picks among the top-ranked candidates for company.
// Returning ok=false declines, and the resolver keeps the top candidate.
type Disambiguator func(company string, candidates []Account) (choice *Account, ok bool)

// DefaultDisambiguator always keeps the top-ranked candidate.
func DefaultDisambiguator(_ string, candidates []Account) (*Account, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	return &candidates[0], true
}

// ResolverConfig tunes the resolver.
type ResolverConfig struct {
	// Disambiguate is consulted when the ranking is ambiguous. Nil keeps the top candidate.
	Disambiguate Disambiguator

	// AmbiguityMargin is the largest score gap between first and second
	// candidate that still counts as ambiguous. Default: DefaultAmbiguityMargin.
	AmbiguityMargin int

	// AlwaysConfirm treats any second candidate as ambiguous regardless of scores.
	AlwaysConfirm bool
}

// Resolver maps organization names to X accounts.
type Resolver struct {
	source       AccountSource
	disambiguate Disambiguator
	margin       int
	always       bool
}

// NewResolver creates a resolver over source.
func NewResolver(source AccountSource, cfg ResolverConfig) *Resolver {
	margin := cfg.AmbiguityMargin
	if margin <= 0 {
		margin = DefaultAmbiguityMargin
	}
	return &Resolver{
		source:       source,
		disambiguate: cfg.Disambiguate,
		margin:       margin,
		always:       cfg.AlwaysConfirm,
	}
}

// Candidate is a searched account with its ranking scores.
type Candidate struct {
	Account       Account
	NameScore     int
	UsernameScore int
}

func (c Candidate) verifiedScore() int {
	if c.Account.Verified {
		return verifiedBonus
	}
	return 0
}

// composite is the score the ambiguity check compares.
func (c Candidate) composite() int {
	return c.verifiedScore() + c.NameScore
}

// compareCandidates orders best first: verified, name similarity,
// username similarity, followers.
func compareCandidates(a, b Candidate) int {
	return cmp.Or(
		cmp.Compare(b.verifiedScore(), a.verifiedScore()),
		cmp.Compare(b.NameScore, a.NameScore),
		cmp.Compare(b.UsernameScore, a.UsernameScore),
		cmp.Compare(b.Account.FollowersCount, a.Account.FollowersCount),
	)
}

// Rank scores accounts against a normalized name and sorts them best first.
// Ties keep search order.
func Rank(normalized string, accounts []Account) []Candidate {
	ranked := make([]Candidate, len(accounts))
	for i, a := range accounts {
		ranked[i] = Candidate{
			Account:       a,
			NameScore:     tokenSetRatio(normalized, NormalizeName(a.DisplayName)),
			UsernameScore: tokenSetRatio(normalized, NormalizeName(a.Username)),
		}
	}
	slices.SortStableFunc(ranked, compareCandidates)
	return ranked
}

// ambiguous reports whether the leading candidates need a human decision.
func (r *Resolver) ambiguous(top []Candidate) bool {
	if len(top) < 2 {
		return false
	}
	if r.always {
		return true
	}
	return top[0].composite()-top[1].composite() <= r.margin
}

// Resolve finds the account of an organization name.
//
// A direct username hit becomes the first candidate and search results follow
// it, deduplicated by id in first-seen order. The whole list is ranked and
// ambiguous rankings go to the Disambiguator.
// No candidates is not an error: it returns nil, nil.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Account, error) {
	norm := NormalizeName(name)
	if norm == "" {
		return nil, nil
	}

	var candidates []Account
	if username := CandidateUsername(norm); username != "" {
		acc, err := r.source.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", norm, err)
		}
		if acc != nil {
			slog.Debug("direct username hit", slog.String("company", norm), slog.String("username", acc.Username))
			candidates = append(candidates, *acc)
		}
	}

	found, err := r.source.SearchAccounts(ctx, norm, 0)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", norm, err)
	}
	candidates = appendNew(candidates, found)
	if len(candidates) == 0 {
		slog.Info("no account candidates", slog.String("company", norm))
		return nil, nil
	}

	ranked := Rank(norm, candidates)
	top := ranked[:min(confirmTopN, len(ranked))]
	best := top[0].Account

	if r.disambiguate == nil || !r.ambiguous(top) {
		return &best, nil
	}

	offered := make([]Account, len(top))
	for i, c := range top {
		offered[i] = c.Account
	}
	choice, ok := r.disambiguate(norm, offered)
	if !ok || choice == nil {
		return &best, nil
	}
	for i := range offered {
		if offered[i].ID == choice.ID {
			return &offered[i], nil
		}
	}
	slog.Warn("disambiguator picked an account that was not offered", slog.String("company", norm), slog.String("id", choice.ID))
	return &best, nil
}

// appendNew appends the accounts of more whose id is not yet in list.
func appendNew(list, more []Account) []Account {
	seen := make(map[string]bool, len(list)+len(more))
	for _, a := range list {
		seen[a.ID] = true
	}
	for _, a := range more {
		if !seen[a.ID] {
			seen[a.ID] = true
			list = append(list, a)
		}
	}
	return list
}

// ResolveInfo resolves name and returns the persistable record.
// An unresolved name yields a record with only CompanyNormalized set.
func (r *Resolver) ResolveInfo(ctx context.Context, name string) (AccountInfo, error) {
	acc, err := r.Resolve(ctx, name)
	if err != nil {
		return AccountInfo{}, err
	}
	return NewAccountInfo(NormalizeName(name), acc), nil
}
