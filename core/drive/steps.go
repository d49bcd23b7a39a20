package drive

// DefaultCacheStepGib is the guaranteed floor tier, offered even when the
// available budget is unknown or too small for any ladder rung.
const DefaultCacheStepGib = 10

// cacheStepLadder is the fixed set of candidate cache size limits in GiB.
// Strictly increasing.
var cacheStepLadder = []int{10, 25, 50, 100, 200, 500, 1000, 2000, 5000, 10000}

// GenerateCacheSteps maps the whole-GiB floor of the observed available
// cache budget to the selectable size tiers. Deterministic for a given
// input, and never offers a tier above the budget except the floor default
// when nothing else fits.
func GenerateCacheSteps(availableBudgetGib int) []int {
	steps := make([]int, 0, len(cacheStepLadder))
	for _, rung := range cacheStepLadder {
		if rung > availableBudgetGib {
			break
		}
		steps = append(steps, rung)
	}

	if len(steps) == 0 {
		return []int{DefaultCacheStepGib}
	}
	return steps
}

func stepSetContains(steps []int, sizeGib int) bool {
	for _, s := range steps {
		if s == sizeGib {
			return true
		}
	}
	return false
}
