package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type slotRepository struct {
	store *Store
}

func (r *slotRepository) Create(_ context.Context, slot *model.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	touch(&slot.Base)
	if slot.Status == "" {
		slot.Status = model.SlotStatusAvailable
	}
	cp := *slot
	r.store.slots[slot.ID] = &cp
	return nil
}

func (r *slotRepository) Get(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	slot, ok := r.store.slots[id]
	if !ok {
		return nil, errors.NotFound("slot", nil)
	}
	cp := *slot
	return &cp, nil
}

func (r *slotRepository) Update(_ context.Context, slot *model.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.slots[slot.ID]
	if !ok {
		return errors.NotFound("slot", nil)
	}
	if current.Version != slot.Version {
		return errors.Conflict("slot", nil)
	}

	cp := *slot
	touch(&cp.Base)
	cp.Version = current.Version + 1
	r.store.slots[slot.ID] = &cp
	*slot = cp
	return nil
}

func (r *slotRepository) Reserve(_ context.Context, slotID, appointmentID uuid.UUID) (*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slot, ok := r.store.slots[slotID]
	if !ok {
		return nil, errors.NotFound("slot", nil)
	}
	if slot.Status != model.SlotStatusAvailable {
		return nil, errors.SlotUnavailable(slotID.String())
	}

	slot.Status = model.SlotStatusBooked
	apptID := appointmentID
	slot.AppointmentID = &apptID
	slot.Version++
	touch(&slot.Base)

	cp := *slot
	return &cp, nil
}

func (r *slotRepository) Release(_ context.Context, slotID uuid.UUID) (*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slot, ok := r.store.slots[slotID]
	if !ok {
		return nil, errors.NotFound("slot", nil)
	}

	switch slot.Status {
	case model.SlotStatusAvailable:
		// already released, nothing to do
	case model.SlotStatusCancelled:
		// withdrawn slots stay withdrawn, only the binding is cleared
		slot.AppointmentID = nil
		slot.Version++
		touch(&slot.Base)
	default:
		slot.Status = model.SlotStatusAvailable
		slot.AppointmentID = nil
		slot.Version++
		touch(&slot.Base)
	}

	cp := *slot
	return &cp, nil
}

func (r *slotRepository) List(_ context.Context, filters *model.SlotFilters) ([]*model.Slot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if filters == nil {
		filters = &model.SlotFilters{}
	}

	var out []*model.Slot
	for _, slot := range r.store.slots {
		if filters.DoctorID != uuid.Nil && slot.DoctorID != filters.DoctorID {
			continue
		}
		if !filters.Date.IsZero() && !sameDay(slot.Date, filters.Date) {
			continue
		}
		if filters.Status != "" && slot.Status != filters.Status {
			continue
		}
		cp := *slot
		out = append(out, &cp)
	}
	return out, nil
}
