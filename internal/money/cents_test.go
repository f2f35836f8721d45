package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsString(t *testing.T) {
	tests := []struct {
		in   Cents
		want string
	}{
		{0, "0"},
		{40500, "405"},
		{40450, "404.5"},
		{40455, "404.55"},
		{5, "0.05"},
		{-1250, "-12.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestCentsMarshalJSON(t *testing.T) {
	payload := struct {
		Total Cents `json:"totalPrice"`
	}{Total: 40500}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalPrice":405}`, string(raw))
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name  string
		price Cents
		pct   float64
		want  Cents
	}{
		{"ten percent of 450", 45000, 10, 4500},
		{"no discount", 45000, 0, 0},
		{"full discount", 45000, 100, 45000},
		{"half cent rounds up", 1050, 5, 53},
		{"fractional percent", 9999, 12.5, 1250},
		{"free service", 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.price.PercentOf(tt.pct))
		})
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, c := range []Cents{0, 5, 40500, 40450, 40455, -1250} {
		raw, err := json.Marshal(c)
		require.NoError(t, err)
		var back Cents
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, c, back, string(raw))
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.234", "1.", ".5", "1.-5"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}
