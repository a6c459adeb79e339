package walkroute

// DefaultPermutationCap bounds number of orderings tried for single subset
const DefaultPermutationCap = 24

// Subsets returns every non-empty subset of {0 .. n-1} in ascending bitmask order
func Subsets(n int) [][]int {
	if n <= 0 {
		return nil
	}
	total := 1 << uint(n)
	result := make([][]int, 0, total-1)
	for mask := 1; mask < total; mask++ {
		subset := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				subset = append(subset, i)
			}
		}
		result = append(result, subset)
	}
	return result
}

// Orderings returns up to limit distinct orderings of positions {0 .. m-1}.
// When m! fits the limit every permutation is returned in lexicographic order.
// Otherwise first lexicographic permutations are followed by cyclic shifts of identity,
// so every position leads at least one ordering as long as the limit allows it
func Orderings(m, limit int) [][]int {
	if m <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultPermutationCap
	}
	lexLimit := limit
	if !factorialAtMost(m, limit) {
		lexLimit = limit - (m - 1)
		if lexLimit < 1 {
			lexLimit = 1
		}
	}

	result := [][]int{}
	seen := map[string]struct{}{}
	perm := make([]int, m)
	for i := range perm {
		perm[i] = i
	}
	for len(result) < lexLimit {
		cp := append([]int(nil), perm...)
		result = append(result, cp)
		seen[orderingKey(cp)] = struct{}{}
		if !nextPermutation(perm) {
			break
		}
	}
	for shift := 1; shift < m && len(result) < limit; shift++ {
		rotated := make([]int, m)
		for i := 0; i < m; i++ {
			rotated[i] = (i + shift) % m
		}
		key := orderingKey(rotated)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, rotated)
	}
	return result
}

// factorialAtMost checks if m! <= limit without overflow
func factorialAtMost(m, limit int) bool {
	f := 1
	for i := 2; i <= m; i++ {
		f *= i
		if f > limit {
			return false
		}
	}
	return true
}

// nextPermutation rearranges perm into next lexicographic permutation. Returns false when perm was the last one
func nextPermutation(perm []int) bool {
	i := len(perm) - 2
	for i >= 0 && perm[i] >= perm[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(perm) - 1
	for perm[j] <= perm[i] {
		j--
	}
	perm[i], perm[j] = perm[j], perm[i]
	for l, r := i+1, len(perm)-1; l < r; l, r = l+1, r-1 {
		perm[l], perm[r] = perm[r], perm[l]
	}
	return true
}

func orderingKey(perm []int) string {
	b := make([]byte, len(perm))
	for i, p := range perm {
		b[i] = byte(p)
	}
	return string(b)
}
