package domain

// ValidateRange checks that [start, end) is a well-formed range inside
// content and that the client-claimed text still matches content[start:end].
// A mismatch means the client's offsets went stale, typically because the
// resource was edited after the highlight was made.
//
// Offsets are byte offsets into the UTF-8 content, the same unit the caller
// used to slice out the claimed text. Pure and total for any input; empty
// content always fails since start < end cannot hold.
func ValidateRange(content string, start, end int, claimed string) error {
	if start < 0 || start >= end || end > len(content) {
		return NewValidationError(ReasonRangeOutOfBounds,
			"range [%d, %d) invalid for content of length %d", start, end, len(content))
	}
	if content[start:end] != claimed {
		return NewValidationError(ReasonTextMismatch,
			"content at [%d, %d) does not match the claimed text", start, end)
	}
	return nil
}

// ExtractContext derives the bounded snippets immediately before and after a
// highlighted range, truncating naturally at the document edges. start and
// end must already have been validated against content.
func ExtractContext(content string, start, end, window int) (before, after string) {
	from := start - window
	if from < 0 {
		from = 0
	}
	to := end + window
	if to > len(content) {
		to = len(content)
	}
	return content[from:start], content[end:to]
}
