package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice_Numeric(t *testing.T) {
	price, err := NormalizePrice(json.RawMessage(`80`))
	require.NoError(t, err)
	assert.Equal(t, 80.0, price)

	price, err = NormalizePrice(json.RawMessage(`80.5`))
	require.NoError(t, err)
	assert.Equal(t, 80.5, price)
}

func TestNormalizePrice_FormattedStrings(t *testing.T) {
	cases := map[string]float64{
		`"₹80"`:     80,
		`"80"`:      80,
		`"Rs. 80"`:  80,
		`"1,299"`:   1299,
		`"₹ 45.50"`: 45.5,
	}
	for raw, want := range cases {
		price, err := NormalizePrice(json.RawMessage(raw))
		require.NoError(t, err, "raw %s", raw)
		assert.Equal(t, want, price, "raw %s", raw)
	}
}

func TestNormalizePrice_Unparseable(t *testing.T) {
	for _, raw := range []string{`"free"`, `""`, `null`, `true`, `"₹"`, `{"amount":80}`} {
		_, err := NormalizePrice(json.RawMessage(raw))
		assert.Error(t, err, "raw %s", raw)
	}
	_, err := NormalizePrice(nil)
	assert.Error(t, err)
}

func TestNormalizePrice_NegativeRejected(t *testing.T) {
	_, err := NormalizePrice(json.RawMessage(`-5`))
	assert.Error(t, err)

	_, err = NormalizePrice(json.RawMessage(`"-5"`))
	assert.Error(t, err)
}
