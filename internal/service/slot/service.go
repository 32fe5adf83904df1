package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/logger"
)

const (
	availabilityCacheTTL = 30 * time.Second
	cacheCleanupInterval = 5 * time.Minute
)

// Service manages the slots doctors publish. Reservation and release
// belong to the scheduling engine; this service covers the doctor-facing
// lifecycle around them.
type Service struct {
	repo   repository.SlotRepository
	docs   repository.DoctorRepository
	cache  *gocache.Cache
	logger *logger.Logger
}

func NewService(repo repository.SlotRepository, docs repository.DoctorRepository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		docs:   docs,
		cache:  gocache.New(availabilityCacheTTL, cacheCleanupInterval),
		logger: log,
	}
}

// Publish creates a new AVAILABLE slot for the doctor. The window must
// be non-empty and must not overlap any other slot of the same doctor on
// that day.
func (s *Service) Publish(ctx context.Context, doctorID uuid.UUID, req *model.CreateSlotRequest) (*model.Slot, error) {
	if _, err := s.docs.Get(ctx, doctorID); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, errors.BadRequest("slot end time must be after start time", nil)
	}

	existing, err := s.repo.List(ctx, &model.SlotFilters{DoctorID: doctorID, Date: req.Date})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing slots: %w", err)
	}
	for _, other := range existing {
		if other.Status == model.SlotStatusCancelled {
			continue
		}
		if other.Overlaps(req.StartTime, req.EndTime) {
			return nil, errors.Conflict("slot window", nil)
		}
	}

	slot := &model.Slot{
		DoctorID:  doctorID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.SlotStatusAvailable,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	s.invalidateAvailability(doctorID)
	s.logger.Info("slot published",
		"slot_id", slot.ID.String(),
		"doctor_id", doctorID.String())

	return slot, nil
}

// Withdraw cancels an unbooked slot. A BOOKED slot cannot be withdrawn;
// its appointment has to be cancelled or reassigned first.
func (s *Service) Withdraw(ctx context.Context, doctorID, slotID uuid.UUID) (*model.Slot, error) {
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.DoctorID != doctorID {
		return nil, errors.DoctorSlotMismatch(doctorID.String(), slotID.String())
	}

	switch slot.Status {
	case model.SlotStatusCancelled:
		return slot, nil
	case model.SlotStatusBooked:
		return nil, errors.InvalidState("slot is booked; cancel or reassign its appointment first")
	}

	slot.Status = model.SlotStatusCancelled
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, err
	}

	s.invalidateAvailability(doctorID)
	s.logger.Info("slot withdrawn", "slot_id", slotID.String())

	return slot, nil
}

// Available returns AVAILABLE slots matching the filters. Results are
// cached briefly per doctor/date pair; this is the hottest read path and
// short staleness is acceptable because Reserve re-checks atomically.
func (s *Service) Available(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	key := availabilityKey(doctorID, date)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Slot), nil
	}

	slots, err := s.repo.List(ctx, &model.SlotFilters{
		DoctorID: doctorID,
		Date:     date,
		Status:   model.SlotStatusAvailable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}

	s.cache.Set(key, slots, gocache.DefaultExpiration)
	return slots, nil
}

// List returns all slots for a doctor regardless of status.
func (s *Service) List(ctx context.Context, filters *model.SlotFilters) ([]*model.Slot, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	return s.repo.Get(ctx, id)
}

func availabilityKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("avail:%s:%s", doctorID, date.Format("2006-01-02"))
}

func (s *Service) invalidateAvailability(doctorID uuid.UUID) {
	// the cache key includes the date; flushing is simpler than tracking
	// every dated key per doctor and the cache is tiny
	s.cache.Flush()
}
