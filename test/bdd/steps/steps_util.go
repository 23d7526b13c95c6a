package steps

import (
	"fmt"
	"strconv"
	"strings"
)

// parseInt64List parses a comma separated list such as "60000001,60000002"
func parseInt64List(list string) ([]int64, error) {
	parts := strings.Split(list, ",")
	values := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in list %q", p, list)
		}
		values = append(values, v)
	}
	return values, nil
}

// parsePairedLists parses two lists that must have the same length
func parsePairedLists(first, second string) ([]int64, []int64, error) {
	a, err := parseInt64List(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := parseInt64List(second)
	if err != nil {
		return nil, nil, err
	}
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("lists %q and %q differ in length", first, second)
	}
	return a, b, nil
}
