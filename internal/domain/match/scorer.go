package match

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Weights of the two skill groups in the combined score.
const (
	RequiredWeight  = 0.7
	PreferredWeight = 0.3
)

// Tier is a coarse bucket derived from a score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
	TierNone   Tier = "none"
)

var tierRank = map[Tier]int{TierNone: 0, TierLow: 1, TierMedium: 2, TierHigh: 3}

// AtLeast reports whether t is the same as or better than min.
func (t Tier) AtLeast(min Tier) bool {
	return tierRank[t] >= tierRank[min]
}

// ParseTier parses a tier name; unknown names fall back to TierNone.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierRank[t]; ok {
		return t
	}
	return TierNone
}

// Result is the outcome of scoring one project against one actor.
type Result struct {
	Score             float64  `json:"score"`
	Percent           int      `json:"percent"`
	Tier              Tier     `json:"tier"`
	RequiredFraction  float64  `json:"requiredFraction"`
	PreferredFraction float64  `json:"preferredFraction"`
	MatchedRequired   []string `json:"matchedRequired"`
	MatchedPreferred  []string `json:"matchedPreferred"`
	MissingRequired   []string `json:"missingRequired"`
}

// Clean trims skills and drops empties and case-insensitive duplicates,
// keeping the first spelling seen.
func Clean(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Matches reports whether two skills match: case-insensitive containment in
// either direction. The contained skill must be at least two runes long;
// single-rune skills only match by equality. Blank skills never match.
func Matches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) >= 2 && strings.Contains(b, a) {
		return true
	}
	return utf8.RuneCountInString(b) >= 2 && strings.Contains(a, b)
}

// Score ranks a project's required and preferred skills against an actor's skills.
func Score(actorSkills, required, preferred []string) Result {
	have := Clean(actorSkills)
	req := Clean(required)
	pref := Clean(preferred)

	matchedReq, missingReq := partition(req, have)
	matchedPref, _ := partition(pref, have)

	reqFrac := fraction(len(matchedReq), len(req))
	prefFrac := fraction(len(matchedPref), len(pref))
	score := round(RequiredWeight*reqFrac + PreferredWeight*prefFrac)

	return Result{
		Score:             score,
		Percent:           Percent(score),
		Tier:              TierFor(score),
		RequiredFraction:  reqFrac,
		PreferredFraction: prefFrac,
		MatchedRequired:   matchedReq,
		MatchedPreferred:  matchedPref,
		MissingRequired:   missingReq,
	}
}

// TierFor buckets a score.
func TierFor(score float64) Tier {
	switch {
	case score >= 0.7:
		return TierHigh
	case score >= 0.4:
		return TierMedium
	case score > 0:
		return TierLow
	default:
		return TierNone
	}
}

// Percent converts a score in [0,1] to an integer in [0,100].
func Percent(score float64) int {
	p := int(math.Round(score * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Before orders listings by descending score, then most recent posting first.
func Before(scoreA float64, postedA time.Time, scoreB float64, postedB time.Time) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return postedA.After(postedB)
}

func partition(wanted, have []string) (matched, missing []string) {
	matched = []string{}
	missing = []string{}
	for _, w := range wanted {
		hit := false
		for _, h := range have {
			if Matches(w, h) {
				hit = true
				break
			}
		}
		if hit {
			matched = append(matched, w)
		} else {
			missing = append(missing, w)
		}
	}
	return matched, missing
}

// fraction treats an empty skill group as fully satisfied.
func fraction(matched, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(matched) / float64(total)
}

func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
