package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/xiaobei/mvd/internal/logger"
	"github.com/xiaobei/mvd/internal/proposal"
)

const selectFilters = `SELECT price_per_hour, price_per_gib, quality_level,
	include_failed, no_access_policy, ip_type
	FROM proposal_filters WHERE id = 1`

// GetFilters returns the persisted proposal filters, or zero filters if
// they cannot be read.
func (s *SQLiteStore) GetFilters() proposal.Filters {
	var row filtersRow
	if err := s.db.Get(&row, selectFilters); err != nil {
		logger.Printf("[storage] read filters: %v", err)
		return proposal.Filters{}
	}
	return row.toFilters()
}

// SetPartial merges patch into the stored filters and returns the result.
func (s *SQLiteStore) SetPartial(patch proposal.FilterPatch) (proposal.Filters, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return proposal.Filters{}, err
	}
	defer tx.Rollback()

	current, err := getFiltersTx(tx)
	if err != nil {
		return proposal.Filters{}, err
	}

	merged := current.Apply(patch)
	row := newFiltersRow(merged)
	_, err = tx.NamedExec(`UPDATE proposal_filters SET
		price_per_hour = :price_per_hour,
		price_per_gib = :price_per_gib,
		quality_level = :quality_level,
		include_failed = :include_failed,
		no_access_policy = :no_access_policy,
		ip_type = :ip_type
		WHERE id = 1`, row)
	if err != nil {
		return proposal.Filters{}, fmt.Errorf("update filters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return proposal.Filters{}, err
	}
	return merged, nil
}

func getFiltersTx(tx *sqlx.Tx) (proposal.Filters, error) {
	var row filtersRow
	if err := tx.Get(&row, selectFilters); err != nil {
		return proposal.Filters{}, fmt.Errorf("read filters: %w", err)
	}
	return row.toFilters(), nil
}

func newFiltersRow(f proposal.Filters) filtersRow {
	return filtersRow{
		PricePerHour:   f.Price.PerHour,
		PricePerGiB:    f.Price.PerGiB,
		QualityLevel:   int(f.Quality.Level),
		IncludeFailed:  boolToInt(f.Quality.IncludeFailed),
		NoAccessPolicy: boolToInt(f.Other.NoAccessPolicy),
		IPType:         f.Other.IPType,
	}
}

func (r filtersRow) toFilters() proposal.Filters {
	return proposal.Filters{
		Price: proposal.PriceFilter{
			PerHour: r.PricePerHour,
			PerGiB:  r.PricePerGiB,
		},
		Quality: proposal.QualityFilter{
			Level:         proposal.QualityLevel(r.QualityLevel),
			IncludeFailed: r.IncludeFailed != 0,
		},
		Other: proposal.OtherFilter{
			NoAccessPolicy: r.NoAccessPolicy != 0,
			IPType:         r.IPType,
		},
	}
}
