package media

import (
	"context"
	"fmt"
)

// SweepResult lists what a sweep found and removed.
type SweepResult struct {
	Scanned  int      `json:"scanned"`
	Orphans  []string `json:"orphans"`
	Removed  int      `json:"removed"`
	Failures int      `json:"failures"`
}

// Sweep deletes every stored file for which referenced reports false. These
// are files written for a request whose row never committed. With dryRun
// the orphans are reported but kept.
func Sweep(ctx context.Context, store Store, referenced func(name string) bool, dryRun bool) (*SweepResult, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	res := &SweepResult{Scanned: len(names), Orphans: []string{}}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if referenced(name) {
			continue
		}
		res.Orphans = append(res.Orphans, name)
		if dryRun {
			continue
		}
		if _, err := store.Delete(ctx, name); err != nil {
			res.Failures++
			continue
		}
		res.Removed++
	}
	return res, nil
}
