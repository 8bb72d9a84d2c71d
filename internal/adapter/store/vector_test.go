package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorToString(t *testing.T) {
	assert.Equal(t, "[0.5,-1,2]", vectorToString([]float32{0.5, -1, 2}))
	assert.Equal(t, "[]", vectorToString(nil))
}

func TestParseVector(t *testing.T) {
	v, err := parseVector("[0.5,-1,2]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 2}, v)

	v, err = parseVector("[ 0.25, 0.75 ]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.75}, v)

	v, err = parseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestParseVector_RoundTrip(t *testing.T) {
	in := []float32{0.125, -3.5, 42, 0}

	out, err := parseVector(vectorToString(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseVector_Malformed(t *testing.T) {
	for _, s := range []string{"", "0.5,1", "[0.5,1", "[a,b]"} {
		_, err := parseVector(s)
		assert.Error(t, err, "input %q", s)
	}
}
