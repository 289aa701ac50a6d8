package parse

// SpanSet tracks which byte ranges of the transcript have been consumed by
// accepted matches. Rooms and items share one set per invocation, so text
// attributed to one match can never be attributed again.
type SpanSet struct {
	spans []span
}

type span struct {
	start, end int
}

// Claim records [start, end) as consumed and reports true, unless the range
// overlaps a previously claimed span, in which case nothing is recorded and
// Claim reports false. First claim wins; there is no backtracking.
func (s *SpanSet) Claim(start, end int) bool {
	for _, sp := range s.spans {
		if start < sp.end && sp.start < end {
			return false
		}
	}
	s.spans = append(s.spans, span{start: start, end: end})
	return true
}

// Len returns the number of claimed spans.
func (s *SpanSet) Len() int {
	return len(s.spans)
}
