package models

import "sort"

func tagValues[T any](tags []T, get func(T) (int, string)) []string {
	sorted := make([]T, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, _ := get(sorted[i])
		pj, _ := get(sorted[j])
		return pi < pj
	})

	values := make([]string, 0, len(sorted))
	for _, t := range sorted {
		_, v := get(t)
		values = append(values, v)
	}
	return values
}
