package app

import "strings"

// Span attributes have a size budget on the collector side; long upserts
// like the enrichment write get cut rather than dropped.
const maxTracedQueryLength = 512

func formatDBQueryForTrace(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	normalized := strings.Join(fields, " ")
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength] + "..."
	}
	return normalized
}
