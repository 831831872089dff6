package traffic

import (
	"fmt"
	"strconv"
	"strings"
)

// AssignRates maps the run configuration to a per-station arrival rate
// vector of length nLegacy+nScheduled. Stations are indexed legacy first,
// then scheduled.
//
// When rateList is non-empty it is parsed as a comma separated list of
// rates in packets per second; station i takes entry i, and stations past
// the end of the list take the last entry. When rateList is empty the class
// defaults apply.
func AssignRates(
	nLegacy, nScheduled int,
	rateList string,
	defaultLegacy, defaultScheduled float64,
) ([]float64, error) {
	total := nLegacy + nScheduled
	rates := make([]float64, total)

	parsed, err := parseRateList(rateList)
	if err != nil {
		return nil, err
	}

	if len(parsed) > 0 {
		for i := 0; i < total; i++ {
			if i < len(parsed) {
				rates[i] = parsed[i]
			} else {
				rates[i] = parsed[len(parsed)-1]
			}
		}
		return rates, nil
	}

	for i := 0; i < nLegacy; i++ {
		rates[i] = defaultLegacy
	}
	for i := nLegacy; i < total; i++ {
		rates[i] = defaultScheduled
	}

	return rates, nil
}

func parseRateList(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}

	var out []float64
	for _, item := range strings.Split(s, ",") {
		if item == "" {
			continue
		}

		v, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("arrival rate entry %q: %w", item, err)
		}
		out = append(out, v)
	}

	return out, nil
}
