package usecase

import (
	"context"
	"errors"
	"time"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/internal/dto/request"
	"room-booking/internal/dto/response"
	"room-booking/pkg/metrics"
	"room-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	GetReservation(ctx context.Context, id string) (*response.ReservationResponse, error)
	GetUserReservations(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
	CancelReservation(ctx context.Context, id string) (*response.ReservationResponse, error)
}

type reservationService struct {
	coordinator BookingCoordinator
	repo        repository.ReservationRepository
	publisher   EventPublisher
	loc         *time.Location
	log         *zap.Logger
}

func NewReservationService(coordinator BookingCoordinator, repo repository.ReservationRepository, publisher EventPublisher, loc *time.Location, log *zap.Logger) ReservationService {
	return &reservationService{
		coordinator: coordinator,
		repo:        repo,
		publisher:   publisher,
		loc:         loc,
		log:         log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, invalidFields(errs)
	}

	window, err := req.Window(s.loc)
	if err != nil {
		return nil, invalidInput("%s", err.Error())
	}

	reservation, err := s.coordinator.Book(ctx, BookingRequest{
		UserID:   req.UserID,
		RoomID:   req.RoomID,
		Window:   window,
		Metadata: req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	// The booking lock is already released here.
	publish(ctx, s.publisher, s.log, EventReservationCreated, reservation)

	res := response.ReservationToResponse(reservation)
	return &res, nil
}

func (s *reservationService) parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalidInput("invalid reservation ID format %q", id)
	}
	return parsed, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id string) (*response.ReservationResponse, error) {
	reservationID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	reservation, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, persistence(err, "find reservation %s", id)
	}
	if reservation == nil {
		return nil, notFound("reservation %s not found", id)
	}

	res := response.ReservationToResponse(reservation)
	return &res, nil
}

func (s *reservationService) GetUserReservations(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	if userID == "" {
		return nil, invalidInput("user id is required")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	reservations, err := s.repo.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		return nil, persistence(err, "list reservations of user %s", userID)
	}

	total, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err, "count reservations of user %s", userID)
	}

	return response.NewPaginatedResponse(response.ReservationsToResponse(reservations), req.Page, req.Limit(), total), nil
}

func (s *reservationService) CancelReservation(ctx context.Context, id string) (*response.ReservationResponse, error) {
	reservationID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	reservation, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, persistence(err, "find reservation %s", id)
	}
	if reservation == nil {
		return nil, notFound("reservation %s not found", id)
	}
	if reservation.Status == entity.ReservationStatusCancelled {
		return nil, invalidInput("reservation %s is already cancelled", id)
	}

	// A concurrent cancel may win between the lookup and here; the store decides.
	cancelled, err := s.repo.Cancel(ctx, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotConfirmed):
			return nil, invalidInput("reservation %s is already cancelled", id)
		case errors.Is(err, repository.ErrReservationNotFound):
			return nil, notFound("reservation %s not found", id)
		}
		s.log.Error("Failed to cancel reservation", zap.Error(err), zap.String("reservation_id", id))
		return nil, persistence(err, "cancel reservation %s", id)
	}
	reservation = cancelled
	metrics.RecordCancellation()

	s.log.Info("Reservation cancelled",
		zap.String("reservation_id", id),
		zap.Int("room_id", reservation.RoomID),
	)

	publish(ctx, s.publisher, s.log, EventReservationCancelled, reservation)

	res := response.ReservationToResponse(reservation)
	return &res, nil
}
