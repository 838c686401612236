package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL optionally tacks disable_prepared_binary_result=yes onto the
// connection URL. Some postgres pools in front of the database reject the
// binary result format for prepared statements.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		// An explicit value in the URL wins.
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// dbNameFromURL extracts the database name for the otelsql db.name attribute.
// It understands both URL-style and keyword DSNs.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.Trim(strings.TrimPrefix(token, "dbname="), `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
