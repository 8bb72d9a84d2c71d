package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRange_OK(t *testing.T) {
	err := ValidateRange("hello world", 6, 11, "world")
	assert.NoError(t, err)
}

func TestValidateRange_OutOfBounds(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		start, end int
	}{
		{"negative start", "hello", -1, 3},
		{"start equals end", "hello", 2, 2},
		{"start after end", "hello", 4, 2},
		{"end past content", "hello", 0, 6},
		{"empty content", "", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.content, tt.start, tt.end, "x")

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ReasonRangeOutOfBounds, ve.Reason)
		})
	}
}

func TestValidateRange_TextMismatch(t *testing.T) {
	// Stale offsets after the resource was edited out from under the client.
	err := ValidateRange("hello world", 0, 5, "world")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ReasonTextMismatch, ve.Reason)
}

func TestValidateRange_FullContent(t *testing.T) {
	assert.NoError(t, ValidateRange("abc", 0, 3, "abc"))
}

func TestExtractContext_MidDocument(t *testing.T) {
	content := strings.Repeat("a", 200)

	before, after := ExtractContext(content, 100, 120, 50)

	assert.Len(t, before, 50)
	assert.Len(t, after, 50)
	assert.Equal(t, content[50:100], before)
	assert.Equal(t, content[120:170], after)
}

func TestExtractContext_ClippedNearStart(t *testing.T) {
	// 200-char resource, highlight at [40, 60): before is clipped to 40
	// chars, after gets the full window.
	content := strings.Repeat("x", 200)

	before, after := ExtractContext(content, 40, 60, 50)

	assert.Len(t, before, 40)
	assert.Equal(t, content[60:110], after)
}

func TestExtractContext_ClippedNearEnd(t *testing.T) {
	content := "0123456789"

	before, after := ExtractContext(content, 8, 10, 50)

	assert.Equal(t, "01234567", before)
	assert.Equal(t, "", after)
}

func TestExtractContext_WholeContentHighlighted(t *testing.T) {
	before, after := ExtractContext("abc", 0, 3, 50)

	assert.Empty(t, before)
	assert.Empty(t, after)
}
