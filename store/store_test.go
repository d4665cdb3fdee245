package store

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestAccounts_RoundTripOptionalFields(t *testing.T) {
	rows := []xcrawler.AccountInfo{
		{CompanyNormalized: "APPLE INC.", TwitterID: strp("380749300"), Username: strp("Apple"), Name: strp("Apple, Inc."), Verified: boolp(true)},
		{CompanyNormalized: "NOBODY LTD"},
		{CompanyNormalized: "ACME", Username: strp("acme"), Verified: boolp(false)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, rows))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestAccounts_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, nil))
	assert.Equal(t, "company_normalized,twitter_id,username,name,verified\n", buf.String())

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAccounts_ColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffusername,company_normalized,verified\nfoo,FOO CORP,True\n"
	got, err := ReadAccounts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "FOO CORP", got[0].CompanyNormalized)
	assert.Equal(t, "foo", *got[0].Username)
	assert.Nil(t, got[0].TwitterID)
	require.NotNil(t, got[0].Verified)
	assert.True(t, *got[0].Verified)
}

func TestSaveLoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	rows := []xcrawler.AccountInfo{{CompanyNormalized: "X", Username: strp("x")}}

	require.NoError(t, SaveAccounts(path, rows))
	got, err := LoadAccounts(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestEditAccount(t *testing.T) {
	rows := []xcrawler.AccountInfo{{CompanyNormalized: "APPLE INC.", Username: strp("old")}}

	rows = EditAccount(rows, "  apple   inc. ", "@Apple")
	require.Len(t, rows, 1)
	assert.Equal(t, "Apple", *rows[0].Username)

	rows = EditAccount(rows, "Acme", "acme")
	require.Len(t, rows, 2)
	assert.Equal(t, "ACME", rows[1].CompanyNormalized)
	assert.Equal(t, "acme", *rows[1].Username)
	assert.Nil(t, rows[1].TwitterID)
}

func TestReadNames(t *testing.T) {
	in := "company\nApple Inc.\n\n  \nAcme\n"
	got, err := ReadNames(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple Inc.", "Acme"}, got)
}

func TestReadDatedCompanies(t *testing.T) {
	in := "company,date\nApple,2024-03-01\n,2024-01-01\nAcme, 2023-12-31\n"
	got, err := ReadDatedCompanies(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Apple", got[0].Company)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got[1].Date)

	_, err = ReadDatedCompanies(strings.NewReader("company,date\nApple,March\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestMappingJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	m := map[string]string{"Apple  Inc.": "APPLE INC.", "索尼": "索尼"}

	require.NoError(t, SaveMapping(path, m))
	got, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestWritePosts(t *testing.T) {
	posts := []xcrawler.ScoredPost{{
		Company:   "ACME",
		Username:  "acme",
		Sentiment: 0.5,
		Post: xcrawler.Post{
			Text:      "hello, world",
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WritePosts(&buf, posts))
	assert.Equal(t,
		"company,text,created_at,sentiment,username\nACME,\"hello, world\",2024-05-01T12:00:00Z,0.5000,acme\n",
		buf.String())
}

func TestWriteCounts(t *testing.T) {
	var buf bytes.Buffer
	rows := []CountRow{{Company: "ACME", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), CountDay: 3, CountWindow: 120}}
	require.NoError(t, WriteCounts(&buf, rows))
	assert.Equal(t, "company,date,count_day,count_window\nACME,2024-01-02,3,120\n", buf.String())
}
