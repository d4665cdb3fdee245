package xcrawler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.UseSearchAll)
	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, 1500*time.Millisecond, s.BaseDelay)
	assert.Equal(t, time.Minute, s.MaxDelay)
	assert.Equal(t, 30, s.RequestsPerMinute)
	assert.Equal(t, DefaultBaseURL, s.BaseURL)
	assert.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"negative retries", func(s *Settings) { s.MaxRetries = -1 }},
		{"base above max", func(s *Settings) { s.BaseDelay = 2 * time.Minute }},
		{"zero rpm", func(s *Settings) { s.RequestsPerMinute = 0 }},
		{"negative network retries", func(s *Settings) { s.NetworkRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoadSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TWITTER_BEARER_TOKEN", "abc")
	t.Setenv("USE_SEARCH_ALL", "false")
	t.Setenv("RATE_LIMIT_MAX_RETRIES", "0")
	t.Setenv("RATE_LIMIT_BASE_DELAY_SECONDS", "0.5")
	t.Setenv("RATE_LIMIT_MAX_DELAY_SECONDS", "10")
	t.Setenv("REQUESTS_PER_MINUTE", "120")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "abc", s.BearerToken)
	assert.False(t, s.UseSearchAll)
	assert.Equal(t, 0, s.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, s.BaseDelay)
	assert.Equal(t, 10*time.Second, s.MaxDelay)
	assert.Equal(t, 120, s.RequestsPerMinute)
	assert.Equal(t, 2, s.NetworkRetries)
	assert.Equal(t, DefaultBaseURL, s.BaseURL)
}

func TestSettingsDefaults_KeepsZeroDelayAndRetries(t *testing.T) {
	s := Settings{RequestsPerMinute: 60}
	s.defaults()
	assert.Zero(t, s.BaseDelay)
	assert.Zero(t, s.NetworkRetries)
	assert.Equal(t, time.Minute, s.MaxDelay)
	assert.NoError(t, s.Validate())

	d := DefaultSettings()
	assert.Equal(t, 2, d.NetworkRetries)
}

func TestLoadSettings_ZeroBaseDelay(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RATE_LIMIT_BASE_DELAY_SECONDS", "0")
	t.Setenv("NETWORK_RETRIES", "0")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Zero(t, s.BaseDelay)
	assert.Zero(t, s.NetworkRetries)

	tr := NewTransport(s, &stubDoer{}, nil)
	assert.Zero(t, tr.settings.BaseDelay)
	assert.Zero(t, tr.settings.NetworkRetries)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RATE_LIMIT_MAX_RETRIES", "-2")

	_, err := LoadSettings()
	assert.True(t, IsFatal(err))
}

func TestFetchAppToken_Passthrough(t *testing.T) {
	s := DefaultSettings()
	s.BearerToken = "given"
	got, err := FetchAppToken(t.Context(), s)
	require.NoError(t, err)
	assert.Equal(t, "given", got.BearerToken)

	_, err = FetchAppToken(t.Context(), DefaultSettings())
	assert.True(t, IsFatal(err))
}
