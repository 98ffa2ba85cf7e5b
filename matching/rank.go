package matching

import (
	"sort"
	"sync"
)

// Rank scores every candidate against the viewer and returns the results
// sorted by descending score, ties broken by ascending candidate ID so the
// output is deterministic. Pairs are independent, so they are scored
// concurrently. Candidates whose scoring fails (nil profile and the like)
// are omitted rather than failing the batch.
func (e *Engine) Rank(viewer *Profile, prefs *Preferences, candidates []*Profile) []MatchResult {
	if viewer == nil || prefs == nil || len(candidates) == 0 {
		return nil
	}

	slots := make([]*MatchResult, len(candidates))
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate *Profile) {
			defer wg.Done()
			result, err := e.Match(viewer, candidate, prefs)
			if err != nil {
				return
			}
			slots[i] = &result
		}(i, candidate)
	}
	wg.Wait()

	results := make([]MatchResult, 0, len(candidates))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})
	return results
}
