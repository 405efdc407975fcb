package concurrent

import "golang.org/x/sync/errgroup"

// ParallelCollect runs action for every element and gathers every failure
// instead of stopping at the first one. The result is indexed like items;
// successful elements hold nil. limit <= 0 means unbounded.
func ParallelCollect[T any](items []T, limit int, action func(T) error) []error {
	errs := make([]error, len(items))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			errs[i] = action(item)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
