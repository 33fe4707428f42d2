package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_MissingAsNull(t *testing.T) {
	data, err := json.Marshal(Values{1.5, math.NaN(), -2, math.Inf(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,null,-2,null]`, string(data))

	var back Values
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 4)
	assert.Equal(t, 1.5, back[0])
	assert.True(t, math.IsNaN(back[1]))
	assert.Equal(t, -2.0, back[2])
	assert.True(t, math.IsNaN(back[3]))
}

func TestValues_Null(t *testing.T) {
	var v Values
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Nil(t, v)

	data, err := json.Marshal(Values(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestValues_RejectsStrings(t *testing.T) {
	var v Values
	assert.Error(t, json.Unmarshal([]byte(`["1"]`), &v))
}
