package usecase

import (
	"context"
	"sync"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
	"github.com/riskibarqy/betslip-analyzer/external/statsapi"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
)

// fakeCompleter scripts completion responses per call and records prompts.
type fakeCompleter struct {
	mu       sync.Mutex
	calls    []completion.Request
	complete func(call int, req completion.Request) (completion.Response, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req completion.Request) (completion.Response, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.complete == nil {
		return completion.Response{}, nil
	}
	return f.complete(call, req)
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStats struct {
	form     func(teamID string) (statsapi.TeamForm, error)
	h2h      func(teamA, teamB string) (statsapi.HeadToHead, error)
	standing func(teamID, league, season string) (statsapi.Standing, error)
}

func (f *fakeStats) GetForm(_ context.Context, teamID string) (statsapi.TeamForm, error) {
	if f.form == nil {
		return statsapi.TeamForm{}, nil
	}
	return f.form(teamID)
}

func (f *fakeStats) GetHeadToHead(_ context.Context, teamA, teamB string) (statsapi.HeadToHead, error) {
	if f.h2h == nil {
		return statsapi.HeadToHead{}, nil
	}
	return f.h2h(teamA, teamB)
}

func (f *fakeStats) GetStanding(_ context.Context, teamID, league, season string) (statsapi.Standing, error) {
	if f.standing == nil {
		return statsapi.Standing{}, nil
	}
	return f.standing(teamID, league, season)
}

// fakeCache wraps a map with optional error injection.
type fakeCache struct {
	mu      sync.Mutex
	store   map[string]enrichment.Data
	getErr  error
	putErr  error
	getHits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]enrichment.Data)}
}

func (c *fakeCache) Get(_ context.Context, matchKey string) (enrichment.Data, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return enrichment.Data{}, false, c.getErr
	}
	c.getHits++
	data, ok := c.store[matchKey]
	return data, ok, nil
}

func (c *fakeCache) Put(_ context.Context, data enrichment.Data) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.store[data.MatchKey] = data
	return nil
}

func (c *fakeCache) get(matchKey string) (enrichment.Data, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.store[matchKey]
	return data, ok
}
