// Package jsonextract pulls a typed JSON document out of model-generated
// text. Completion providers wrap their output in markdown fences, prose,
// and citation markers; every caller needs the same cleanup before parsing,
// and every parse failure must degrade instead of crash.
package jsonextract

import (
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

var ErrNoObject = crerr.New("no JSON object found in text")

// Result carries either the parsed value or the parse error, forcing the
// degraded path to be handled explicitly at the call site.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) Ok() bool {
	return r.Err == nil
}

// Parse extracts the first balanced {...} object from text and decodes it
// into T. When the object does not decode as-is, one more pass runs with
// citation markers stripped; grounded providers interleave [n] references
// with the payload.
func Parse[T any](text string) Result[T] {
	var out Result[T]

	object, err := FirstObject(text)
	if err != nil {
		out.Err = err
		return out
	}

	if err := sonic.Unmarshal([]byte(object), &out.Value); err == nil {
		return out
	}

	object, retryErr := FirstObject(stripCitations(stripFences(text)))
	if retryErr != nil {
		out.Err = retryErr
		return out
	}
	if err := sonic.Unmarshal([]byte(object), &out.Value); err != nil {
		out.Err = crerr.Wrap(err, "decode extracted object")
	}
	return out
}

// FirstObject strips markdown fences, then returns the first balanced
// top-level JSON object in the remaining text.
func FirstObject(text string) (string, error) {
	cleaned := stripFences(text)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", ErrNoObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return cleaned[start : i+1], nil
			}
		}
	}

	return "", crerr.Wrap(ErrNoObject, "unbalanced object")
}

// stripFences removes ``` fences including an optional language tag, keeping
// the fenced body.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// stripCitations drops grounding artifacts like [1], [2][3] that some
// providers interleave with the payload.
func stripCitations(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '[' {
			j := i + 1
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j > i+1 && j < len(text) && text[j] == ']' {
				i = j
				continue
			}
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
