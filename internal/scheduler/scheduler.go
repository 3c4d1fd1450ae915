// Package scheduler implements the proportional chunk scheduler: given
// the current in-flight load distribution across tables, pick which
// table's next chunk to dispatch so that concurrent loaders spread across
// distinct tables and big tables receive proportionally more workers.
package scheduler

import "dumpreader/internal/model"

// Candidate is one table currently eligible for a chunk dispatch.
type Candidate struct {
	Key            model.TableKey
	BytesAvailable int64
}

// InFlight maps a table key to the bytes currently dispatched to workers
// but not yet reported complete for that table.
type InFlight map[model.TableKey]int64

// Pick selects one candidate using the proportional-share procedure: a
// candidate with no bytes in flight wins first (the one with the largest
// share of available bytes); only when every candidate has bytes in
// flight does the table furthest below its fair share of in-flight bytes
// win.
// candidates must be non-empty; Pick returns the zero Candidate and false
// if it is. Callers are expected to pass only tables with BytesAvailable
// > 0 (the tables_with_data set already enforces this).
func Pick(candidates []Candidate, inFlight InFlight) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	var totalInFlight int64
	for _, v := range inFlight {
		totalInFlight += v
	}

	var totalAvailable int64
	for _, c := range candidates {
		totalAvailable += c.BytesAvailable
	}
	if totalAvailable == 0 {
		return candidates[0], true
	}

	var (
		haveBest    bool
		best        Candidate
		bestDiff    float64
		haveUnique  bool
		bestUnique  Candidate
		bestUniqueA float64
	)

	for _, c := range candidates {
		a := float64(c.BytesAvailable) / float64(totalAvailable)

		inFlightBytes, hasInFlight := inFlight[c.Key]
		if !hasInFlight || inFlightBytes == 0 {
			if !haveUnique || a > bestUniqueA {
				haveUnique = true
				bestUnique = c
				bestUniqueA = a
			}
		}

		var w float64
		if hasInFlight && totalInFlight > 0 {
			w = float64(inFlightBytes) / float64(totalInFlight)
		}
		diff := a - w

		if !haveBest || diff > bestDiff {
			haveBest = true
			best = c
			bestDiff = diff
		}
	}

	if haveUnique {
		return bestUnique, true
	}
	return best, true
}
