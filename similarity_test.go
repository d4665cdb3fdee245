package xcrawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"APPLE INC.", "APPLE INC.", 100},
		{"APPLE INC.", "INC. APPLE", 100},
		{"APPLE INC.", "APPLE", 100},
		{"APPLE", "", 0},
		{"ABC", "XYZ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenSetRatio(tt.a, tt.b))
		})
	}
}

func TestTokenSetRatio_Ordering(t *testing.T) {
	close := tokenSetRatio("ACME CORP", "ACME CORPORATION")
	far := tokenSetRatio("ACME CORP", "ZENITH HOLDINGS")
	assert.Greater(t, close, far)
	assert.Equal(t, tokenSetRatio("ACME CORP", "ACME CO"), tokenSetRatio("ACME CO", "ACME CORP"), "symmetric")
}
