// Package trend scores labels by recency-weighted activity and holds the
// published ranking for concurrent readers.
package trend

import (
	"sort"
	"time"
)

// Item is a timestamped piece of content carrying zero or more labels.
type Item struct {
	Timestamp time.Time
	Labels    []string
}

// ScoredLabel is a label with its accumulated decay-weighted score.
type ScoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Snapshot is an immutable ranked result. Entries are sorted by score
// descending, ties broken by label ascending.
type Snapshot struct {
	computedAt time.Time
	entries    []ScoredLabel
}

var emptySnapshot = &Snapshot{}

// NewSnapshot builds a snapshot from already ranked entries. The slice is copied.
func NewSnapshot(computedAt time.Time, ranked []ScoredLabel) *Snapshot {
	entries := make([]ScoredLabel, len(ranked))
	copy(entries, ranked)
	return &Snapshot{computedAt: computedAt, entries: entries}
}

// ComputedAt returns the reference time the snapshot was scored against.
// Zero for the cold-start snapshot.
func (s *Snapshot) ComputedAt() time.Time {
	return s.computedAt
}

// Len returns the number of ranked labels.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the ranked labels with scores.
func (s *Snapshot) Entries() []ScoredLabel {
	out := make([]ScoredLabel, len(s.entries))
	copy(out, s.entries)
	return out
}

// Labels returns just the labels in rank order.
func (s *Snapshot) Labels() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Label
	}
	return out
}

// Weight returns the linear decay weight for an item of the given age:
// 1.0 at age zero falling to 0.0 at age == window. Ages outside [0, window]
// and non-positive windows yield 0.
func Weight(age, window time.Duration) float64 {
	if window <= 0 || age < 0 || age > window {
		return 0
	}
	w := 1.0 - float64(age)/float64(window)
	if w < 0 {
		return 0
	}
	return w
}

// Tally accumulates each label's decay weight across items without ranking
// or truncating. Repeated labels on one item count once.
func Tally(items []Item, now time.Time, window time.Duration) map[string]float64 {
	scores := make(map[string]float64)

	for _, item := range items {
		if len(item.Labels) == 0 {
			continue
		}

		age := now.Sub(item.Timestamp)
		if age < 0 || age > window {
			continue
		}

		weight := Weight(age, window)
		if weight == 0 {
			continue
		}

		seen := make(map[string]struct{}, len(item.Labels))
		for _, label := range item.Labels {
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			scores[label] += weight
		}
	}

	return scores
}

// Rank orders scores descending, breaking ties by label ascending, and keeps
// at most k entries.
func Rank(scores map[string]float64, k int) []ScoredLabel {
	if k <= 0 {
		return nil
	}

	ranked := make([]ScoredLabel, 0, len(scores))
	for label, score := range scores {
		ranked = append(ranked, ScoredLabel{Label: label, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Label < ranked[j].Label
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Compute scores the items as of now and returns the top k labels.
func Compute(items []Item, now time.Time, window time.Duration, k int) *Snapshot {
	if window <= 0 || k <= 0 {
		return &Snapshot{computedAt: now}
	}
	return &Snapshot{
		computedAt: now,
		entries:    Rank(Tally(items, now, window), k),
	}
}
