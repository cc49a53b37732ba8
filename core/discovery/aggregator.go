package discovery

import (
	"context"
	"sync"

	"submerge/model"
)

// FetchAll fans out one request per category in parallel and collects the
// results into per-category buckets. Category failures are isolated: a bucket
// whose fetch failed comes back empty and never blocks the others.
func (c *Client) FetchAll(ctx context.Context) map[string][]model.Track {
	results := make(map[string][]model.Track, len(Categories))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, cat := range Categories {
		wg.Add(1)
		go func(cat Category) {
			defer wg.Done()
			tracks := c.FetchCategory(ctx, cat)
			mu.Lock()
			results[cat.Key] = tracks
			mu.Unlock()
		}(cat)
	}
	wg.Wait()

	return results
}

// FetchGlobalUnique fans out across all categories and merges the buckets
// into a single deduplicated list for search. Buckets are concatenated in
// category-table order, duplicates are dropped first-seen wins, so a track
// keeps the category label of its first discovery.
func (c *Client) FetchGlobalUnique(ctx context.Context) []model.Track {
	buckets := make([][]model.Track, len(Categories))

	var wg sync.WaitGroup
	for i, cat := range Categories {
		wg.Add(1)
		go func(i int, cat Category) {
			defer wg.Done()
			buckets[i] = c.FetchCategory(ctx, cat)
		}(i, cat)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var unique []model.Track
	for _, bucket := range buckets {
		for _, t := range bucket {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			unique = append(unique, t)
		}
	}
	return unique
}
