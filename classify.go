package walkroute

// Classifier merges reference routes with a pool of candidates and tags survivors
type Classifier struct {
	// References are kept with their own classes and always go first
	References []Route
	// PoolClass is assigned to every surviving pool route
	PoolClass RouteClass
	// RetainBest keeps only the best pool route
	RetainBest bool
	// Better compares pool routes. Total time is used when nil
	Better func(a, b Route) bool
}

func lessByTime(a, b Route) bool {
	return a.TotalSeconds() < b.TotalSeconds()
}

// Classify returns references followed by pool routes which do not duplicate any reference or each other.
// Routes with non-finite metrics are dropped
func (classifier Classifier) Classify(pool []Route) []Route {
	better := classifier.Better
	if better == nil {
		better = lessByTime
	}
	result := make([]Route, 0, len(classifier.References)+len(pool))
	for _, ref := range classifier.References {
		if !ref.IsFinite() {
			continue
		}
		result = append(result, ref)
	}
	result = Deduplicate(result)
	refsNum := len(result)

	seen := make(map[string]struct{}, len(result)+len(pool))
	for _, ref := range result {
		seen[edgeSetSignature(ref.Edges)] = struct{}{}
	}
	survivors := []Route{}
	for _, route := range pool {
		if !route.IsFinite() {
			continue
		}
		sig := edgeSetSignature(route.Edges)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		survivors = append(survivors, route.WithClass(classifier.PoolClass))
	}
	if classifier.RetainBest && len(survivors) > 1 {
		best := 0
		for i := 1; i < len(survivors); i++ {
			if better(survivors[i], survivors[best]) {
				best = i
			}
		}
		survivors = survivors[best : best+1]
	}
	return append(result[:refsNum], survivors...)
}
