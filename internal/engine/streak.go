package engine

import (
	"sort"
	"time"

	"github.com/sproutapp/sprout/internal/utils"
)

// computeStreaks derives the current and longest streak from a habit's
// check-in dates. The input may contain duplicates and be unordered; the
// result depends only on the distinct date set and the reference day. The
// current streak counts the consecutive run ending today or yesterday; a run
// that ended earlier has lapsed and counts as zero.
func computeStreaks(dates []string, today time.Time) (current, longest int, err error) {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		t, err := utils.ParseDay(d)
		if err != nil {
			return 0, 0, err
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0, 0, nil
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i := range days {
		if i == 0 || utils.DaysBetween(days[i-1], days[i]) != 1 {
			run = 1
		} else {
			run++
		}
		if run > longest {
			longest = run
		}
	}

	gap := utils.DaysBetween(days[len(days)-1], today)
	if gap == 0 || gap == 1 {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if utils.DaysBetween(days[i], days[i+1]) != 1 {
				break
			}
			current++
		}
	}
	return current, longest, nil
}
