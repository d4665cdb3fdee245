package xcrawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	byUsername map[string]*Account
	search     []Account
	lookupErr  error
	searchErr  error

	lookups  []string
	searches []string
}

func (f *fakeSource) GetUserByUsername(_ context.Context, username string) (*Account, error) {
	f.lookups = append(f.lookups, username)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.byUsername[username], nil
}

func (f *fakeSource) SearchAccounts(_ context.Context, query string, _ int) ([]Account, error) {
	f.searches = append(f.searches, query)
	return f.search, f.searchErr
}

func TestResolve_DirectHitIsRanked(t *testing.T) {
	src := &fakeSource{
		byUsername: map[string]*Account{"Acme": {ID: "squat", Username: "Acme", DisplayName: "acme parody fan"}},
		search:     []Account{{ID: "official", Username: "acme_official", DisplayName: "Acme", Verified: true}},
	}
	r := NewResolver(src, ResolverConfig{})

	acc, err := r.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "official", acc.ID, "verified search candidate outranks an unverified direct hit")
	assert.Equal(t, []string{"Acme"}, src.lookups)
	assert.Equal(t, []string{"ACME"}, src.searches)
}

func TestResolve_DirectHitOnly(t *testing.T) {
	src := &fakeSource{byUsername: map[string]*Account{"AppleInc": {ID: "1", Username: "AppleInc"}}}
	r := NewResolver(src, ResolverConfig{})

	acc, err := r.Resolve(context.Background(), " apple  inc. ")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "1", acc.ID)
	assert.Equal(t, []string{"AppleInc"}, src.lookups)
}

func TestResolve_DirectHitCountedOnce(t *testing.T) {
	direct := Account{ID: "1", Username: "Acme", DisplayName: "Acme"}
	src := &fakeSource{
		byUsername: map[string]*Account{"Acme": &direct},
		search:     []Account{direct, {ID: "2", Username: "acmefans", DisplayName: "Acme Fans"}},
	}
	var offered []Account
	r := NewResolver(src, ResolverConfig{
		Disambiguate: func(_ string, c []Account) (*Account, bool) {
			offered = c
			return nil, false
		},
	})

	acc, err := r.Resolve(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "1", acc.ID)
	require.Len(t, offered, 2)
	assert.Equal(t, "1", offered[0].ID)
	assert.Equal(t, "2", offered[1].ID)
}

func TestResolve_NoCandidates(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, ResolverConfig{})

	acc, err := r.Resolve(context.Background(), "Nobody Ltd")
	require.NoError(t, err)
	assert.Nil(t, acc)
	assert.Equal(t, []string{"NOBODY LTD"}, src.searches)

	info, err := r.ResolveInfo(context.Background(), "Nobody Ltd")
	require.NoError(t, err)
	assert.Equal(t, "NOBODY LTD", info.CompanyNormalized)
	assert.Nil(t, info.TwitterID)
	assert.Nil(t, info.Verified)
}

func TestResolve_VerifiedRankedFirst(t *testing.T) {
	src := &fakeSource{search: []Account{
		{ID: "1", Username: "acme_fans", DisplayName: "ACME", FollowersCount: 900000},
		{ID: "2", Username: "acmecorp", DisplayName: "Acme Corporation Official", Verified: true, FollowersCount: 10},
	}}
	r := NewResolver(src, ResolverConfig{})

	acc, err := r.Resolve(context.Background(), "Acme")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "2", acc.ID)
}

func TestRank_CompositeKey(t *testing.T) {
	accounts := []Account{
		{ID: "a", Username: "zzz", DisplayName: "Other Thing", FollowersCount: 5},
		{ID: "b", Username: "acme", DisplayName: "Acme", FollowersCount: 1},
		{ID: "c", Username: "acme", DisplayName: "Acme", FollowersCount: 50},
		{ID: "d", Username: "acme", DisplayName: "Acme", FollowersCount: 50},
	}
	ranked := Rank("ACME", accounts)

	ids := make([]string, len(ranked))
	for i, c := range ranked {
		ids[i] = c.Account.ID
	}
	assert.Equal(t, []string{"c", "d", "b", "a"}, ids, "followers break ties, then discovery order")
	assert.Equal(t, 100, ranked[0].NameScore)
}

func TestResolve_Disambiguation(t *testing.T) {
	candidates := []Account{
		{ID: "1", Username: "acme", DisplayName: "Acme"},
		{ID: "2", Username: "acme_inc", DisplayName: "Acme"},
		{ID: "3", Username: "acme_news", DisplayName: "Acme"},
		{ID: "4", Username: "acme_jobs", DisplayName: "Acme"},
	}

	t.Run("callback choice used", func(t *testing.T) {
		var offered []Account
		r := NewResolver(&fakeSource{search: candidates}, ResolverConfig{
			Disambiguate: func(company string, c []Account) (*Account, bool) {
				assert.Equal(t, "ACME HOLDINGS GROUP", company)
				offered = c
				return &c[2], true
			},
		})
		acc, err := r.Resolve(context.Background(), "Acme Holdings Group")
		require.NoError(t, err)
		assert.Len(t, offered, 3, "top three are offered")
		assert.Equal(t, offered[2].ID, acc.ID)
	})

	t.Run("decline keeps top", func(t *testing.T) {
		r := NewResolver(&fakeSource{search: candidates}, ResolverConfig{
			Disambiguate: func(string, []Account) (*Account, bool) { return nil, false },
		})
		acc, err := r.Resolve(context.Background(), "Acme Holdings Group")
		require.NoError(t, err)
		assert.Equal(t, Rank("ACME HOLDINGS GROUP", candidates)[0].Account.ID, acc.ID)
	})

	t.Run("default disambiguator keeps top", func(t *testing.T) {
		r := NewResolver(&fakeSource{search: candidates}, ResolverConfig{Disambiguate: DefaultDisambiguator})
		acc, err := r.Resolve(context.Background(), "Acme Holdings Group")
		require.NoError(t, err)
		assert.Equal(t, Rank("ACME HOLDINGS GROUP", candidates)[0].Account.ID, acc.ID)
	})

	t.Run("clear leader not escalated", func(t *testing.T) {
		called := false
		src := &fakeSource{search: []Account{
			{ID: "v", Username: "acme", DisplayName: "Acme", Verified: true},
			{ID: "x", Username: "acme_fan", DisplayName: "Acme"},
		}}
		r := NewResolver(src, ResolverConfig{
			Disambiguate: func(string, []Account) (*Account, bool) { called = true; return nil, false },
		})
		acc, err := r.Resolve(context.Background(), "Acme Holdings Group")
		require.NoError(t, err)
		assert.Equal(t, "v", acc.ID)
		assert.False(t, called)

		r = NewResolver(src, ResolverConfig{
			AlwaysConfirm: true,
			Disambiguate:  func(string, []Account) (*Account, bool) { called = true; return nil, false },
		})
		_, err = r.Resolve(context.Background(), "Acme Holdings Group")
		require.NoError(t, err)
		assert.True(t, called, "AlwaysConfirm escalates any second candidate")
	})

	t.Run("choice outside offer ignored", func(t *testing.T) {
		r := NewResolver(&fakeSource{search: candidates}, ResolverConfig{
			Disambiguate: func(string, []Account) (*Account, bool) { return &Account{ID: "zzz"}, true },
		})
		acc, err := r.Resolve(context.Background(), "Acme Holdings Group")
		require.NoError(t, err)
		assert.NotEqual(t, "zzz", acc.ID)
	})
}

func TestResolve_ErrorsPropagate(t *testing.T) {
	authErr := &APIError{Kind: KindAuth, Status: 401}
	r := NewResolver(&fakeSource{lookupErr: authErr}, ResolverConfig{})

	_, err := r.Resolve(context.Background(), "Acme")
	assert.True(t, IsFatal(err))

	searchErr := errors.New("search down")
	r = NewResolver(&fakeSource{searchErr: searchErr}, ResolverConfig{})
	_, err = r.Resolve(context.Background(), "Acme")
	assert.ErrorIs(t, err, searchErr)
}

func TestResolve_BlankName(t *testing.T) {
	src := &fakeSource{}
	acc, err := NewResolver(src, ResolverConfig{}).Resolve(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, acc)
	assert.Empty(t, src.lookups)
}
