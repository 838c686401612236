package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
)

const slipImageB64 = "ZmFrZS1zbGlwLWltYWdl"

func TestExtractReturnsDistinctMatches(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{complete: func(_ int, req completion.Request) (completion.Response, error) {
		if req.ImageB64 != slipImageB64 {
			t.Errorf("image was not forwarded to the completer")
		}
		return completion.Response{Text: `{
			"matches": [
				{"home_team": "Liverpool", "away_team": "Everton", "league": "Premier League", "odds": 1.85},
				{"home_team": "Chelsea", "away_team": "Fulham", "league": "Premier League", "date": "2026-09-05"}
			]
		}`}, nil
	}}
	svc := NewExtractionService(completer, NewValidationService(nil, nil), nil)

	matches, err := svc.Extract(context.Background(), slipImageB64, "image/png")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Key == matches[1].Key {
		t.Fatal("distinct matches must get distinct keys")
	}
	if matches[0].Odds != 1.85 {
		t.Fatalf("odds = %v, want 1.85", matches[0].Odds)
	}
	if matches[1].Date == nil || matches[1].Date.Format("2006-01-02") != "2026-09-05" {
		t.Fatalf("date was not parsed: %+v", matches[1].Date)
	}
}

func TestExtractHandlesFencedOutput(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{complete: func(int, completion.Request) (completion.Response, error) {
		return completion.Response{Text: "Here is the slip content:\n```json\n" +
			`{"matches": [{"home_team": "Ajax", "away_team": "PSV", "league": "Eredivisie"}]}` +
			"\n```"}, nil
	}}
	svc := NewExtractionService(completer, nil, nil)

	matches, err := svc.Extract(context.Background(), slipImageB64, "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(matches) != 1 || matches[0].HomeTeam != "ajax" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestExtractDedupesRepeatedMatches(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{complete: func(int, completion.Request) (completion.Response, error) {
		return completion.Response{Text: `{
			"matches": [
				{"home_team": "Manchester United", "away_team": "Arsenal", "league": "Premier League"},
				{"home_team": "Man Utd", "away_team": "Arsenal", "league": "Premier League"}
			]
		}`}, nil
	}}
	svc := NewExtractionService(completer, NewValidationService(nil, nil), nil)

	matches, err := svc.Extract(context.Background(), slipImageB64, "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches after dedup, want 1", len(matches))
	}
}

func TestExtractFailsOnEmptySlip(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{complete: func(int, completion.Request) (completion.Response, error) {
		return completion.Response{Text: `{"matches": []}`}, nil
	}}
	svc := NewExtractionService(completer, nil, nil)

	_, err := svc.Extract(context.Background(), slipImageB64, "")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractFailsOnUnparseableOutput(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{complete: func(int, completion.Request) (completion.Response, error) {
		return completion.Response{Text: "I could not read the image."}, nil
	}}
	svc := NewExtractionService(completer, nil, nil)

	_, err := svc.Extract(context.Background(), slipImageB64, "")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractFailsOnCompleterError(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{complete: func(int, completion.Request) (completion.Response, error) {
		return completion.Response{}, errors.New("provider down")
	}}
	svc := NewExtractionService(completer, nil, nil)

	_, err := svc.Extract(context.Background(), slipImageB64, "")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractRequiresImage(t *testing.T) {
	t.Parallel()

	svc := NewExtractionService(&fakeCompleter{}, nil, nil)
	_, err := svc.Extract(context.Background(), "  ", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
