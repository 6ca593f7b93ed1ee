package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// ReservationStore provides data access to the reservations, courts
// and maintenance_blocks tables.  It implements the engine's Store
// contract.  All timestamps are stored and compared in UTC; the
// connection must be opened with loc=UTC (see internal/database).
//
// The store does no slot-level coordination of its own: the engine
// serializes every read-then-write per slot key, so each method here
// is a plain single statement (or statement plus re-select).
type ReservationStore struct {
	db *sql.DB
}

// NewReservationStore returns a store bound to the provided database.
func NewReservationStore(db *sql.DB) *ReservationStore { return &ReservationStore{db: db} }

// reservationCols is the column list shared by every reservation
// select.  Date and time-of-day columns are formatted into the string
// shapes the model uses (YYYY-MM-DD and HH:MM).
const reservationCols = `id, court_id, DATE_FORMAT(date, '%Y-%m-%d'),
       TIME_FORMAT(start_time, '%H:%i'), TIME_FORMAT(end_time, '%H:%i'),
       user_id, price_cents, status, payment_status, is_queued, queue_rank,
       queue_hold_deadline, payment_hold_started_at, payment_hold_deadline,
       cancel_reason, created_at, updated_at`

// scanReservation reads one reservation row from any scanner (a *Row
// or *Rows positioned on a row).
func scanReservation(scan func(dest ...any) error) (*model.Reservation, error) {
	var (
		r            model.Reservation
		queueRank    sql.NullInt64
		queueDL      sql.NullTime
		holdStart    sql.NullTime
		holdDL       sql.NullTime
		cancelReason sql.NullString
	)
	err := scan(
		&r.ID, &r.CourtID, &r.Date, &r.StartTime, &r.EndTime,
		&r.UserID, &r.PriceCents, &r.Status, &r.PaymentStatus, &r.IsQueued, &queueRank,
		&queueDL, &holdStart, &holdDL,
		&cancelReason, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if queueRank.Valid {
		rank := int(queueRank.Int64)
		r.QueueRank = &rank
	}
	if queueDL.Valid {
		t := queueDL.Time.UTC()
		r.QueueHoldDeadline = &t
	}
	if holdStart.Valid {
		t := holdStart.Time.UTC()
		r.PaymentHoldStartedAt = &t
	}
	if holdDL.Valid {
		t := holdDL.Time.UTC()
		r.PaymentHoldDeadline = &t
	}
	if cancelReason.Valid {
		s := cancelReason.String
		r.CancelReason = &s
	}
	return &r, nil
}

// FindBySlotKey returns every reservation for the exact slot key,
// terminal rows included, ordered by queue rank then creation order so
// the engine sees arrival order directly.
func (s *ReservationStore) FindBySlotKey(ctx context.Context, key model.SlotKey) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
               FROM reservations
               WHERE court_id = ? AND date = ? AND start_time = ? AND end_time = ?
               ORDER BY queue_rank IS NULL DESC, queue_rank ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, key.CourtID, key.Date, key.StartTime, key.EndTime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindByID returns one reservation, or (nil, nil) when no row exists.
func (s *ReservationStore) FindByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(s.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// Create inserts a new reservation and populates its generated ID and
// timestamps by querying the row back.
func (s *ReservationStore) Create(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations
               (court_id, date, start_time, end_time, user_id, price_cents,
                status, payment_status, is_queued, queue_rank,
                queue_hold_deadline, payment_hold_started_at, payment_hold_deadline)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, q,
		r.CourtID, r.Date, r.StartTime, r.EndTime, r.UserID, r.PriceCents,
		r.Status, r.PaymentStatus, r.IsQueued, nullInt(r.QueueRank),
		nullTime(r.QueueHoldDeadline), nullTime(r.PaymentHoldStartedAt), nullTime(r.PaymentHoldDeadline),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return s.db.QueryRowContext(ctx, sel, r.ID).Scan(&r.CreatedAt, &r.UpdatedAt)
}

// Update persists every mutable field of the reservation.
func (s *ReservationStore) Update(ctx context.Context, r *model.Reservation) error {
	const q = `UPDATE reservations
               SET status = ?, payment_status = ?, is_queued = ?, queue_rank = ?,
                   queue_hold_deadline = ?, payment_hold_started_at = ?, payment_hold_deadline = ?,
                   cancel_reason = ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q,
		r.Status, r.PaymentStatus, r.IsQueued, nullInt(r.QueueRank),
		nullTime(r.QueueHoldDeadline), nullTime(r.PaymentHoldStartedAt), nullTime(r.PaymentHoldDeadline),
		nullStr(r.CancelReason), r.ID,
	)
	return err
}

// CancelOthers marks every non-confirmed, non-cancelled reservation
// for the slot key, excluding the given ID, as cancelled with the
// reason.  One statement, so settlement voids the whole field in a
// single step.
func (s *ReservationStore) CancelOthers(ctx context.Context, key model.SlotKey, excludeID uint64, reason string) (int, error) {
	const q = `UPDATE reservations
               SET status = 'CANCELLED', payment_status = 'PAYMENT_CANCELLED',
                   cancel_reason = ?, updated_at = UTC_TIMESTAMP()
               WHERE court_id = ? AND date = ? AND start_time = ? AND end_time = ?
                 AND id <> ? AND status NOT IN ('CONFIRMED', 'CANCELLED')`
	result, err := s.db.ExecContext(ctx, q, reason, key.CourtID, key.Date, key.StartTime, key.EndTime, excludeID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// ListConfirmedForDay returns confirmed reservations for a court and
// date, used by the conflict detector and the availability grid.
func (s *ReservationStore) ListConfirmedForDay(ctx context.Context, courtID uint64, date string) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
               FROM reservations
               WHERE court_id = ? AND date = ? AND status = 'CONFIRMED'
               ORDER BY start_time ASC`
	rows, err := s.db.QueryContext(ctx, q, courtID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListBlocksForDay returns maintenance blocks applying to the court on
// the date: blocks scoped to the court itself plus blocks scoped to
// the court's owning venue.
func (s *ReservationStore) ListBlocksForDay(ctx context.Context, courtID uint64, date string) ([]*model.MaintenanceBlock, error) {
	const q = `SELECT b.id, b.court_id, b.venue_id,
                      DATE_FORMAT(b.date, '%Y-%m-%d'),
                      TIME_FORMAT(b.start_time, '%H:%i'), TIME_FORMAT(b.end_time, '%H:%i'),
                      b.reason
               FROM maintenance_blocks b
               WHERE b.date = ?
                 AND (b.court_id = ?
                      OR b.venue_id = (SELECT venue_id FROM courts WHERE id = ?))`
	rows, err := s.db.QueryContext(ctx, q, date, courtID, courtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.MaintenanceBlock
	for rows.Next() {
		var (
			b          model.MaintenanceBlock
			blockCourt sql.NullInt64
			blockVenue sql.NullInt64
			reason     sql.NullString
		)
		if err := rows.Scan(&b.ID, &blockCourt, &blockVenue, &b.Date, &b.StartTime, &b.EndTime, &reason); err != nil {
			return nil, err
		}
		switch {
		case blockCourt.Valid:
			b.Scope = model.CourtScope(uint64(blockCourt.Int64))
		case blockVenue.Valid:
			b.Scope = model.VenueScope(uint64(blockVenue.Int64))
		}
		if reason.Valid {
			msg := reason.String
			b.Reason = &msg
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// CourtByID returns the court, or (nil, nil) when no row exists.
func (s *ReservationStore) CourtByID(ctx context.Context, id uint64) (*model.Court, error) {
	const q = `SELECT id, venue_id, name,
                      TIME_FORMAT(open_time, '%H:%i'), TIME_FORMAT(close_time, '%H:%i'),
                      is_active, created_at, updated_at
               FROM courts WHERE id = ?`
	var c model.Court
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.VenueID, &c.Name, &c.OpenTime, &c.CloseTime,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListExpiredHoldKeys returns the distinct slot keys that still have a
// pending reservation whose payment or queue hold deadline has passed.
// The background sweeper feeds on this to promote queues promptly.
func (s *ReservationStore) ListExpiredHoldKeys(ctx context.Context, now time.Time) ([]model.SlotKey, error) {
	const q = `SELECT DISTINCT court_id, DATE_FORMAT(date, '%Y-%m-%d'),
                      TIME_FORMAT(start_time, '%H:%i'), TIME_FORMAT(end_time, '%H:%i')
               FROM reservations
               WHERE status = 'PENDING'
                 AND ((is_queued = 0 AND payment_hold_deadline IS NOT NULL AND payment_hold_deadline <= ?
                       AND payment_status IN ('PAYMENT_PENDING', 'PAYMENT_PROCESSING'))
                      OR (is_queued = 1 AND queue_hold_deadline IS NOT NULL AND queue_hold_deadline <= ?))`
	rows, err := s.db.QueryContext(ctx, q, now.UTC(), now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SlotKey
	for rows.Next() {
		var k model.SlotKey
		if err := rows.Scan(&k.CourtID, &k.Date, &k.StartTime, &k.EndTime); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format("2006-01-02 15:04:05")
}

func nullStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
