package search

import (
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-search-server/model"
)

// ProcessQueries ranks every query against active documents and returns the results in
// query order. Queries run in parallel, at most the configured worker count at a time, and
// identical queries running at the same time are evaluated once. If any query fails, the
// error of the earliest failing query is returned.
func (s *Service) ProcessQueries(queries []string) ([][]model.ScoredDocument, error) {
	results := make([][]model.ScoredDocument, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	g.SetLimit(max(s.settings.Parallel.Workers, 1))
	for i, rawQuery := range queries {
		g.Go(func() error {
			shared, err, _ := s.inflight.Do(rawQuery, func() (interface{}, error) {
				return s.FindTopDocuments(rawQuery, nil)
			})
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = slices.Clone(shared.([]model.ScoredDocument))
			return nil
		})
	}
	_ = g.Wait() // Workers report through errs

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("error executing query #%d %q: %w", i, queries[i], err)
		}
	}
	return results, nil
}

// ProcessQueriesJoined behaves like ProcessQueries but flattens the results,
// keeping each query's hits together and in query order.
func (s *Service) ProcessQueriesJoined(queries []string) ([]model.ScoredDocument, error) {
	perQuery, err := s.ProcessQueries(queries)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, results := range perQuery {
		total += len(results)
	}
	joined := make([]model.ScoredDocument, 0, total)
	for _, results := range perQuery {
		joined = append(joined, results...)
	}
	return joined, nil
}
