package repository

import (
	"context"
	"errors"
	"fmt"

	"room-booking/internal/data/entity"
	"room-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrReservationOverlap is returned when the store itself refuses an overlapping reservation.
	ErrReservationOverlap  = errors.New("reservation overlaps an existing reservation")
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrReservationNotConfirmed is returned when a cancel finds the reservation already cancelled.
	ErrReservationNotConfirmed = errors.New("reservation is not confirmed")
)

// SQLSTATE exclusion_violation, raised by reservations_no_overlap.
const pgExclusionViolation = "23P01"

type ReservationRepository interface {
	Create(ctx context.Context, draft *entity.ReservationDraft) (*entity.Reservation, error)
	FindByWindow(ctx context.Context, window entity.Interval) ([]*entity.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Reservation, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	// Cancel moves a confirmed reservation to cancelled. Only one caller can win the transition.
	Cancel(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, user_id, room_id, start_time, end_time, status, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*entity.Reservation, error) {
	var r entity.Reservation
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.RoomID,
		&r.StartTime,
		&r.EndTime,
		&r.Status,
		&r.Metadata,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *reservationRepository) Create(ctx context.Context, draft *entity.ReservationDraft) (*entity.Reservation, error) {
	query := `
		INSERT INTO reservations (id, user_id, room_id, start_time, end_time, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	metadata := draft.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	res := &entity.Reservation{
		Base:      entity.Base{ID: uuid.New()},
		UserID:    draft.UserID,
		RoomID:    draft.RoomID,
		StartTime: draft.Window.Start,
		EndTime:   draft.Window.End,
		Status:    entity.ReservationStatusConfirmed,
		Metadata:  metadata,
	}

	err := r.db.QueryRow(ctx, query,
		res.ID,
		res.UserID,
		res.RoomID,
		res.StartTime,
		res.EndTime,
		res.Status,
		res.Metadata,
	).Scan(&res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			r.log.Warn("Reservation rejected by overlap constraint",
				zap.Int("room_id", draft.RoomID),
				zap.Stringer("window", draft.Window),
			)
			return nil, fmt.Errorf("create reservation room %d %s: %w", draft.RoomID, draft.Window, ErrReservationOverlap)
		}

		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.Int("room_id", draft.RoomID),
			zap.String("user_id", draft.UserID),
		)
		return nil, fmt.Errorf("create reservation room %d: %w", draft.RoomID, err)
	}

	return res, nil
}

func (r *reservationRepository) FindByWindow(ctx context.Context, window entity.Interval) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE start_time < $2 AND end_time > $1
	`

	rows, err := r.db.Query(ctx, query, window.Start, window.End)
	if err != nil {
		r.log.Error("Failed to find reservations by window",
			zap.Error(err),
			zap.Stringer("window", window),
		)
		return nil, fmt.Errorf("find reservations in %s: %w", window, err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations in %s: %w", window, err)
	}

	return reservations, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`

	res, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	return res, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find reservations by user ID %s: %w", userID, err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations of user %s: %w", userID, err)
	}

	return reservations, nil
}

func (r *reservationRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return 0, fmt.Errorf("count reservations by user ID %s: %w", userID, err)
	}

	return count, nil
}

func (r *reservationRepository) Cancel(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.db.QueryRow(ctx, query, id, entity.ReservationStatusCancelled, entity.ReservationStatusConfirmed))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cancel reservation %s: %w", id.String(), ErrReservationNotConfirmed)
	}
	if err != nil {
		r.log.Error("Failed to cancel reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("cancel reservation %s: %w", id.String(), err)
	}

	return res, nil
}
