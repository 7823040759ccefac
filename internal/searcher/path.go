package searcher

import (
	"strings"
)

// Layer tags assigned by path heuristics
const (
	LayerService    = "service"
	LayerDomain     = "domain"
	LayerController = "controller"
	LayerRepository = "repository"
	LayerUtility    = "utility"
	LayerTest       = "test"
	LayerOther      = "other"
)

type pathRule struct {
	markers []string
	tag     string
	delta   func(Weights) float64
}

// Only the first matching architectural rule applies
var architecturalRules = []pathRule{
	{[]string{"/services/", "/service/"}, LayerService, func(w Weights) float64 { return w.ServicePathBoost }},
	{[]string{"/domain/", "/models/", "/entities/"}, LayerDomain, func(w Weights) float64 { return w.DomainPathBoost }},
	{[]string{"/controllers/", "/handlers/", "/api/"}, LayerController, func(w Weights) float64 { return w.ControllerPathBoost }},
	{[]string{"/repositories/", "/dao/"}, LayerRepository, func(w Weights) float64 { return w.RepositoryPathBoost }},
}

var (
	utilityMarkers = []string{"/utils/", "/helpers/", "/lib/", "/vendor/"}
	testMarkers    = []string{"/test", "_test", ".test.", ".spec."}
)

// pathTier re-scores every candidate from its file path. All deltas are
// summed before clamping. Utility then test tags overwrite earlier tags.
func pathTier(pool Pool, w Weights) {
	for _, c := range pool {
		if c.Symbol == nil {
			continue
		}
		delta, tag := pathAdjustment(c.Symbol.FilePath, w)
		if tag != "" {
			c.Tag = tag
		}
		c.Boost(delta)
	}
}

// pathAdjustment returns the summed delta and the winning tag for path
func pathAdjustment(path string, w Weights) (float64, string) {
	lower := strings.ToLower(path)
	var delta float64
	var tag string

	for _, rule := range architecturalRules {
		if containsAny(lower, rule.markers) {
			delta += rule.delta(w)
			tag = rule.tag
			break
		}
	}

	if containsAny(lower, utilityMarkers) {
		delta += w.UtilityPathPenalty
		tag = LayerUtility
	}

	if containsAny(lower, testMarkers) {
		delta += w.TestPathPenalty
		tag = LayerTest
	}

	return delta, tag
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
