package lots

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocaleFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected NullFloat
	}{
		{"thousands and decimal comma", "1 234,56", Valid(1234.56)},
		{"non-breaking spaces", "12 345 678,90", Valid(12345678.90)},
		{"plain integer", "5000", Valid(5000)},
		{"plain decimal point", "12.5", Valid(12.5)},
		{"comma only", "0,25", Valid(0.25)},
		{"negative", "-1 000,5", Valid(-1000.5)},
		{"empty", "", Null()},
		{"whitespace only", "   ", Null()},
		{"garbage", "not-a-number", Null()},
		{"mixed garbage", "12abc", Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLocaleFloat(tt.input))
		})
	}
}

func TestLocaleFloatUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected NullFloat
	}{
		{"json number", `{"v": 1234.5}`, Valid(1234.5)},
		{"locale string", `{"v": "1 234,56"}`, Valid(1234.56)},
		{"null", `{"v": null}`, Null()},
		{"garbage string", `{"v": "н/д"}`, Null()},
		{"wrong type", `{"v": [1,2]}`, Null()},
		{"missing key", `{}`, Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				V LocaleFloat `json:"v"`
			}
			// Decoding must never fail, whatever the payload shape.
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &doc))
			assert.Equal(t, tt.expected, doc.V.Value)
		})
	}
}

func TestNullFloatOr(t *testing.T) {
	assert.Equal(t, 3.5, Valid(3.5).Or(0))
	assert.Equal(t, 0.0, Null().Or(0))
	assert.Equal(t, MissingSentinel, Null().Or(MissingSentinel))
	// A legitimate zero must not be mistaken for missing.
	assert.Equal(t, 0.0, Valid(0).Or(MissingSentinel))
}

func TestNullFloatJSON(t *testing.T) {
	b, err := json.Marshal(map[string]NullFloat{"a": Valid(1.5), "b": Null()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(b))
}
