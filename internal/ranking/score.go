package ranking

import (
	"math"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/rafipicu1/bartertalco-sub000/internal/cache"
)

const earthRadiusKm = 6371.0

// Term match strengths against an item's words.
const (
	exactWord    = 1.0
	wordPrefix   = 0.75
	fuzzyInWord  = 0.4
	minFuzzyTerm = 3
)

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// proximity maps a distance to (0, 1]; scaleKm away scores 0.5.
func proximity(km, scaleKm float64) float64 {
	if km < 0 {
		km = 0
	}
	if scaleKm <= 0 {
		scaleKm = DefaultWeights().ProximityScaleKm
	}
	return 1 / (1 + km/scaleKm)
}

// termStrength scores how well one search term hits a word list.
// Exact words beat prefixes, which beat fuzzy subsequence hits.
func termStrength(term string, words []string) float64 {
	best := 0.0
	for _, w := range words {
		switch {
		case w == term:
			return exactWord
		case strings.HasPrefix(w, term) && best < wordPrefix:
			best = wordPrefix
		}
	}
	if best > 0 || len([]rune(term)) < minFuzzyTerm {
		return best
	}
	if len(fuzzy.Find(term, words)) > 0 {
		return fuzzyInWord
	}
	return 0
}

// searchOverlap sums term weights by match strength, dampened with log1p so
// one heavily repeated search does not drown out the other signals.
func searchOverlap(terms []cache.TermWeight, words []string) float64 {
	if len(terms) == 0 || len(words) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range terms {
		sum += t.Weight * termStrength(t.Term, words)
	}
	return math.Log1p(sum)
}
