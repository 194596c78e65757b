package sentiment

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// groupByClass returns the example indices of every class id in ascending
// class order.
func groupByClass(labels []int) ([]int, map[int][]int) {
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	classes := make([]int, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes, groups
}

// stratifiedSplit shuffles each class with a seeded source and holds out
// testFraction of it, so both partitions keep the class proportions. Every
// class needs at least two examples.
func stratifiedSplit(labels []int, testFraction float64, seed int64) ([]int, []int, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, newError(KindTraining, fmt.Sprintf("test fraction %g outside (0, 1)", testFraction), nil)
	}

	rng := rand.New(rand.NewSource(seed))
	classes, groups := groupByClass(labels)
	if len(classes) < 2 {
		return nil, nil, newError(KindTraining, fmt.Sprintf("need at least 2 classes, got %d", len(classes)), nil)
	}

	var train, test []int
	for _, c := range classes {
		members := append([]int(nil), groups[c]...)
		if len(members) < 2 {
			return nil, nil, newError(KindTraining,
				fmt.Sprintf("class %d has %d example(s); at least 2 are needed to stratify", c, len(members)), nil)
		}
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})

		nTest := int(math.Round(float64(len(members)) * testFraction))
		nTest = max(1, min(nTest, len(members)-1))
		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// stratifiedFolds deals the members of every class round-robin into k folds
// and returns the held-out indices of each fold. Every class needs at least k
// examples so each fold sees every class.
func stratifiedFolds(labels []int, k int) ([][]int, error) {
	if k < 2 {
		return nil, newError(KindTraining, fmt.Sprintf("k must be greater than 1, got %d", k), nil)
	}

	classes, groups := groupByClass(labels)
	folds := make([][]int, k)
	for _, c := range classes {
		members := groups[c]
		if len(members) < k {
			return nil, newError(KindTraining,
				fmt.Sprintf("class %d has %d example(s) in the training partition; %d folds need at least %d", c, len(members), k, k), nil)
		}
		for m, idx := range members {
			folds[m%k] = append(folds[m%k], idx)
		}
	}
	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds, nil
}

// complement returns the indices in [0, n) that are not in held, which must
// be sorted.
func complement(n int, held []int) []int {
	out := make([]int, 0, n-len(held))
	j := 0
	for i := 0; i < n; i++ {
		if j < len(held) && held[j] == i {
			j++
			continue
		}
		out = append(out, i)
	}
	return out
}

func selectVectors(x []FeatureVector, idx []int) []FeatureVector {
	out := make([]FeatureVector, len(idx))
	for i, k := range idx {
		out[i] = x[k]
	}
	return out
}

func selectInts(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, k := range idx {
		out[i] = y[k]
	}
	return out
}

func selectStrings(s []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = s[k]
	}
	return out
}
