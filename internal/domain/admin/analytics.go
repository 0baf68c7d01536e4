package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyCount is one day of booking volume.
type DailyCount struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
}

// ServiceRevenue aggregates completed-booking revenue per service.
type ServiceRevenue struct {
	ServiceID    uuid.UUID `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	Bookings     int       `json:"bookings"`
	RevenueCents int64     `json:"revenue_cents"`
}

// PlatformStats is the admin dashboard headline block.
type PlatformStats struct {
	Vendors          int   `json:"vendors"`
	PendingVendors   int   `json:"pending_vendors"`
	Bookings         int   `json:"bookings"`
	BookingsToday    int   `json:"bookings_today"`
	RevenueCents     int64 `json:"revenue_cents"`
	CancelledPercent int   `json:"cancelled_percent"`
}

// Analytics runs reporting SQL directly against the pool. Reports are
// read-only and never join a transaction.
type Analytics struct {
	pool *pgxpool.Pool
}

func NewAnalytics(pool *pgxpool.Pool) *Analytics {
	return &Analytics{pool: pool}
}

func (a *Analytics) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var s PlatformStats
	err := a.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM vendor),
			(SELECT COUNT(*) FROM vendor WHERE status = 'pending'),
			(SELECT COUNT(*) FROM booking),
			(SELECT COUNT(*) FROM booking WHERE start_time >= date_trunc('day', NOW())
				AND start_time < date_trunc('day', NOW()) + interval '1 day'),
			COALESCE((SELECT SUM(price_cents - discount_cents) FROM booking WHERE status = 'completed'), 0),
			COALESCE((SELECT (COUNT(*) FILTER (WHERE status = 'cancelled')) * 100 / NULLIF(COUNT(*), 0) FROM booking), 0)
	`).Scan(&s.Vendors, &s.PendingVendors, &s.Bookings, &s.BookingsToday, &s.RevenueCents, &s.CancelledPercent)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BookingsPerDay returns daily booking counts for the trailing window.
func (a *Analytics) BookingsPerDay(ctx context.Context, days int) ([]DailyCount, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	rows, err := a.pool.Query(ctx, `
		SELECT to_char(date_trunc('day', start_time), 'YYYY-MM-DD') AS day, COUNT(*)
		FROM booking
		WHERE start_time >= NOW() - make_interval(days => $1)
		GROUP BY day ORDER BY day`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyCount
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Date, &d.Bookings); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopServices ranks services by completed revenue in the trailing window.
func (a *Analytics) TopServices(ctx context.Context, since time.Time, limit int) ([]ServiceRevenue, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := a.pool.Query(ctx, `
		SELECT s.id, s.name, COUNT(b.id), COALESCE(SUM(b.price_cents - b.discount_cents), 0)
		FROM booking b
		JOIN service s ON s.id = b.service_id
		WHERE b.status = 'completed' AND b.start_time >= $1
		GROUP BY s.id, s.name
		ORDER BY 4 DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ServiceRevenue
	for rows.Next() {
		var sr ServiceRevenue
		if err := rows.Scan(&sr.ServiceID, &sr.ServiceName, &sr.Bookings, &sr.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
