package match

import "sort"

// DefaultMaxResults caps ranked listings for non-admin viewers.
const DefaultMaxResults = 1000

// Interest is one declared user interest.
type Interest struct {
	CategoryID  string `json:"category_id"`
	Proficiency int    `json:"proficiency"` // 1..5
}

// Candidate is a posting viewed through the ranker: its id and categories.
type Candidate struct {
	ID         string
	Categories []string
}

// Score sums the viewer's proficiency over the categories the posting
// carries. The sum is monotonic in both overlap size and proficiency.
func Score(interests []Interest, categories []string) int {
	if len(interests) == 0 || len(categories) == 0 {
		return 0
	}
	byCategory := make(map[string]int, len(interests))
	for _, in := range interests {
		byCategory[in.CategoryID] = in.Proficiency
	}
	total := 0
	for _, c := range categories {
		total += byCategory[c]
	}
	return total
}

// Rank orders candidates by score descending and caps the result at max.
// Ties keep the incoming order, which callers set to newest-first.
func Rank(interests []Interest, cands []Candidate, max int) []string {
	if max <= 0 {
		max = DefaultMaxResults
	}
	type scored struct {
		id    string
		score int
		pos   int
	}
	out := make([]scored, len(cands))
	for i, c := range cands {
		out[i] = scored{id: c.ID, score: Score(interests, c.Categories), pos: i}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].pos < out[j].pos
	})
	if len(out) > max {
		out = out[:max]
	}
	ids := make([]string, len(out))
	for i, s := range out {
		ids[i] = s.id
	}
	return ids
}
