package xcrawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectEndpoint(t *testing.T) {
	tests := []struct {
		name         string
		useSearchAll bool
		kind         QueryKind
		want         Endpoint
	}{
		{"full search", true, QuerySearch, EndpointSearchAll},
		{"full timeline", true, QueryTimeline, EndpointSearchAll},
		{"recent search", false, QuerySearch, EndpointSearchRecent},
		{"recent timeline", false, QueryTimeline, EndpointUserTweets},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectEndpoint(tt.useSearchAll, tt.kind))
		})
	}
}

func TestEndpointPaths(t *testing.T) {
	assert.Equal(t, "/tweets/search/all", EndpointSearchAll.URLPath("ignored"))
	assert.Equal(t, "/users/42/tweets", EndpointUserTweets.URLPath("42"))
	assert.Equal(t, "/users/by/username/acme", UserByUsernamePath("acme"))
	assert.Equal(t, "next_token", EndpointSearchRecent.CursorParam)
	assert.Equal(t, "pagination_token", EndpointUserTweets.CursorParam)
}

func TestClampMaxResults(t *testing.T) {
	for in, want := range map[int]int{1: 10, 10: 10, 50: 50, 100: 100, 500: 100} {
		assert.Equal(t, want, clampMaxResults(in), "clamp(%d)", in)
	}
}

func TestQueryKindString(t *testing.T) {
	assert.Equal(t, "search", QuerySearch.String())
	assert.Equal(t, "timeline", QueryTimeline.String())
	assert.Equal(t, "QueryKind(7)", QueryKind(7).String())
}
