package repository

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type SourceCount struct {
	Company string
	Count   int
}

type Stats struct {
	TotalLeads  int
	ByStatus    map[string]int
	ByFitBand   map[string]int
	AvgFitScore *float64
	TopSources  []SourceCount
	Recent      []ActivityRow
}

// Stats gathers the dashboard aggregates. The independent queries run
// concurrently against the pool.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByStatus:  make(map[string]int),
		ByFitBand: make(map[string]int),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT status, COUNT(*) FROM leads GROUP BY status
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			stats.ByStatus[status] = count
			stats.TotalLeads += count
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT fit_band, COUNT(*) FROM leads
			WHERE fit_band IS NOT NULL
			GROUP BY fit_band
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var band string
			var count int
			if err := rows.Scan(&band, &count); err != nil {
				return err
			}
			stats.ByFitBand[band] = count
		}
		return rows.Err()
	})

	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT AVG(fit_score) FROM leads WHERE fit_score IS NOT NULL
		`).Scan(&stats.AvgFitScore)
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT company, COUNT(*) AS cnt
			FROM leads
			WHERE company IS NOT NULL AND company <> ''
			GROUP BY company
			ORDER BY cnt DESC
			LIMIT 10
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		sources := make([]SourceCount, 0, 10)
		for rows.Next() {
			var item SourceCount
			if err := rows.Scan(&item.Company, &item.Count); err != nil {
				return err
			}
			sources = append(sources, item)
		}
		stats.TopSources = sources
		return rows.Err()
	})

	g.Go(func() error {
		recent, err := r.RecentActivity(gctx, 10)
		if err != nil {
			return err
		}
		stats.Recent = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return stats, nil
}
