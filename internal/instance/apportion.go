package instance

import "sort"

// Apportion distributes total units across weights proportionally using
// the largest-remainder method, so the counts always sum to total
// exactly. Deterministic: ties break on lower index. Weights are
// relative, not caps; a total larger than the weighted population still
// apportions fully.
func Apportion(weights []float64, total int) []int {
	counts := make([]int, len(weights))
	if total <= 0 || len(weights) == 0 {
		return counts
	}
	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		return counts
	}

	type frac struct {
		idx int
		rem float64
	}
	assigned := 0
	fracs := make([]frac, 0, len(weights))
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		exact := float64(total) * w / sum
		base := int(exact)
		counts[i] = base
		assigned += base
		fracs = append(fracs, frac{idx: i, rem: exact - float64(base)})
	}

	sort.Slice(fracs, func(a, b int) bool {
		if fracs[a].rem != fracs[b].rem {
			return fracs[a].rem > fracs[b].rem
		}
		return fracs[a].idx < fracs[b].idx
	})
	for i := 0; assigned < total && i < len(fracs); i++ {
		counts[fracs[i].idx]++
		assigned++
	}
	// more leftovers than positive-weight entries: cycle again
	for i := 0; assigned < total; i = (i + 1) % len(fracs) {
		counts[fracs[i].idx]++
		assigned++
	}
	return counts
}
