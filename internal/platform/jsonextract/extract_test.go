package jsonextract

import (
	"testing"

	crerr "github.com/cockroachdb/errors"
)

type samplePayload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestParsePlainObject(t *testing.T) {
	t.Parallel()

	res := Parse[samplePayload](`{"name":"arsenal","score":72}`)
	if !res.Ok() {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if res.Value.Name != "arsenal" || res.Value.Score != 72 {
		t.Fatalf("unexpected value: %+v", res.Value)
	}
}

func TestParseFencedObject(t *testing.T) {
	t.Parallel()

	text := "Here is the analysis:\n```json\n{\"name\":\"chelsea\",\"score\":55}\n```\nLet me know if you need more."
	res := Parse[samplePayload](text)
	if !res.Ok() {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if res.Value.Name != "chelsea" {
		t.Fatalf("unexpected value: %+v", res.Value)
	}
}

func TestParseWithSurroundingProse(t *testing.T) {
	t.Parallel()

	text := `Based on recent data {"name":"liverpool","score":81} which reflects strong form.`
	res := Parse[samplePayload](text)
	if !res.Ok() {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if res.Value.Score != 81 {
		t.Fatalf("unexpected value: %+v", res.Value)
	}
}

func TestParseStripsCitationArtifacts(t *testing.T) {
	t.Parallel()

	text := `{"name":"leeds"[1][2],"score":44[3]}`
	res := Parse[samplePayload](text)
	if !res.Ok() {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if res.Value.Name != "leeds" || res.Value.Score != 44 {
		t.Fatalf("unexpected value: %+v", res.Value)
	}
}

func TestParseKeepsNumericArrays(t *testing.T) {
	t.Parallel()

	type withArray struct {
		Odds []float64 `json:"odds"`
	}
	res := Parse[withArray](`{"odds":[1, 2.5, 3]}`)
	if !res.Ok() {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if len(res.Value.Odds) != 3 {
		t.Fatalf("unexpected value: %+v", res.Value)
	}
}

func TestParseNoObject(t *testing.T) {
	t.Parallel()

	res := Parse[samplePayload]("the model refused to answer")
	if res.Ok() {
		t.Fatal("expected failure")
	}
	if !crerr.Is(res.Err, ErrNoObject) {
		t.Fatalf("err = %v, want ErrNoObject", res.Err)
	}
}

func TestParseUnbalancedObject(t *testing.T) {
	t.Parallel()

	res := Parse[samplePayload](`{"name":"truncated`)
	if res.Ok() {
		t.Fatal("expected failure")
	}
}

func TestFirstObjectIgnoresBracesInStrings(t *testing.T) {
	t.Parallel()

	got, err := FirstObject(`{"note":"odd { brace } inside","n":1}`)
	if err != nil {
		t.Fatalf("FirstObject error: %v", err)
	}
	if got != `{"note":"odd { brace } inside","n":1}` {
		t.Fatalf("unexpected object: %s", got)
	}
}

func TestFirstObjectNested(t *testing.T) {
	t.Parallel()

	got, err := FirstObject(`noise {"outer":{"inner":2}} trailing {"second":3}`)
	if err != nil {
		t.Fatalf("FirstObject error: %v", err)
	}
	if got != `{"outer":{"inner":2}}` {
		t.Fatalf("unexpected object: %s", got)
	}
}
