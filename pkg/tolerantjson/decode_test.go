package tolerantjson

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_WellFormedMatchesEncodingJSON(t *testing.T) {
	inputs := []string{
		`{"statusCode": 200, "body": "No new comments!"}`,
		`[{"code": "A"}, {"code": "B", "price": 15}]`,
		`"just a string"`,
		`42.5`,
		`true`,
		`null`,
		` [ ] `,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			var want interface{}
			require.NoError(t, json.Unmarshal([]byte(input), &want))

			got, stage, err := NewDecoder().DecodeStage(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, StageStrict, stage)
		})
	}
}

func TestDecode_SingleQuotedWrapper(t *testing.T) {
	got, stage, err := NewDecoder().DecodeStage(`'[{"code": "X"}]'`)
	require.NoError(t, err)

	assert.Equal(t, StageNormalized, stage)
	assert.Equal(t, []interface{}{map[string]interface{}{"code": "X"}}, got)
}

func TestDecode_MixedQuotes(t *testing.T) {
	got, err := Decode(`{"code":'BOBA25',"location":"Phoenix",'price':"15"}`)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"code":     "BOBA25",
		"location": "Phoenix",
		"price":    "15",
	}, got)
}

func TestDecode_FallsBackToBlindReplacement(t *testing.T) {
	// the normalizer keeps \' which JSON rejects; replacing every ' turns it into \"
	got, stage, err := NewDecoder().DecodeStage(`{'a': 'it\'s'}`)
	require.NoError(t, err)

	assert.Equal(t, StageReplaced, stage)
	assert.Equal(t, map[string]interface{}{"a": `it"s`}, got)
}

func TestDecode_Failure(t *testing.T) {
	tests := []string{
		"No new comments!",
		"{code: X",
		"",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			v, err := Decode(input)
			require.Error(t, err)
			assert.Nil(t, v)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, input, decodeErr.Input)
			assert.True(t, errors.Is(err, ErrUndecodable))
			assert.Contains(t, err.Error(), "failed to parse JSON")
		})
	}
}

func TestDecode_SentinelSummaryIsRecoverable(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := Decode("No new comments")
		assert.Error(t, err)
	})
}

func TestDecoder_WithRepair(t *testing.T) {
	input := `{code: 'X', price: 12,}`

	_, err := Decode(input)
	require.Error(t, err)

	got, stage, err := NewDecoder(WithRepair()).DecodeStage(input)
	require.NoError(t, err)
	assert.Equal(t, StageRepaired, stage)
	assert.Equal(t, map[string]interface{}{"code": "X", "price": float64(12)}, got)
}
