package jobs

import (
	"context"
	"database/sql"

	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/metrics"
)

// RefreshStats — периодический пересчёт gauge-метрик по тенантам.
func RefreshStats(database *sql.DB) Job {
	return func(ctx context.Context) error {
		schools, err := db.CountActiveSchools(ctx, database)
		if err != nil {
			return err
		}
		metrics.ActiveSchools.Set(float64(schools))

		enrollments, err := db.CountActiveEnrollments(ctx, database)
		if err != nil {
			return err
		}
		metrics.ActiveEnrollments.Set(float64(enrollments))
		return nil
	}
}
