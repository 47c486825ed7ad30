package churn

import "sort"

// Dataset is an aligned feature/label bundle. Users defines the row order;
// Features and Target always have exactly one entry per user.
type Dataset struct {
	Users        []string
	FeatureNames []string
	Features     [][]float64
	Target       []int
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Users)
}

// PrepareDataset inner-joins features and labels on user id. Users missing
// either side are dropped silently; the remaining users are sorted ascending
// so row order is stable.
func PrepareDataset(features map[string][]float64, labels map[string]int) Dataset {
	users := make([]string, 0, len(features))
	for userID := range features {
		if _, ok := labels[userID]; ok {
			users = append(users, userID)
		}
	}
	sort.Strings(users)

	dataset := Dataset{
		Users:        users,
		FeatureNames: FeatureNames,
		Features:     make([][]float64, len(users)),
		Target:       make([]int, len(users)),
	}
	for i, userID := range users {
		dataset.Features[i] = features[userID]
		dataset.Target[i] = labels[userID]
	}
	return dataset
}
