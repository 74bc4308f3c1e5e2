package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
)

// reportRepository serves aggregate read models through sqlx struct scanning
type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: sqlx.NewDb(db, "postgres")}
}

// CalendarSpans returns one row per vehicle and rental overlapping
// [from, until). Vehicles without rentals in the window come back once with
// NULL rental columns.
func (r *reportRepository) CalendarSpans(ctx context.Context, from, until time.Time) ([]repository.VehicleSpan, error) {
	query := `SELECT v.id AS vehicle_id, v.license_plate,
	                 r.id AS rental_id, r.customer_name, r.start_date, COALESCE(r.flexible_end_date, r.end_date) AS end_date, r.is_flexible
	          FROM vehicles v
	          LEFT JOIN rentals r ON r.vehicle_id = v.id
	               AND r.status <> 'cancelled'
	               AND r.approval_status NOT IN ('rejected', 'spam')
	               AND r.start_date < $2
	               AND COALESCE(r.flexible_end_date, r.end_date) >= $1
	          WHERE v.status NOT IN ('removed', 'temp_removed')
	          ORDER BY v.brand, v.model, v.license_plate, r.start_date`
	spans := []repository.VehicleSpan{}
	if err := r.db.SelectContext(ctx, &spans, query, from, until); err != nil {
		return nil, err
	}
	return spans, nil
}

func (r *reportRepository) ApprovalStats(ctx context.Context) (*domain.ApprovalStats, error) {
	query := `SELECT
	            COUNT(*) FILTER (WHERE approval_status = 'pending')  AS pending,
	            COUNT(*) FILTER (WHERE approval_status = 'approved') AS approved,
	            COUNT(*) FILTER (WHERE approval_status = 'rejected') AS rejected,
	            COUNT(*) FILTER (WHERE approval_status = 'spam')     AS spam
	          FROM rentals WHERE source_type = 'email_auto'`
	var stats domain.ApprovalStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
