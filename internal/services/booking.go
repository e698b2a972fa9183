package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/docbook-api/internal/metrics"
	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/slots"
	"github.com/harentsoaR/docbook-api/internal/store"
)

// Actor is whoever asks for a change: a patient, a doctor or the admin.
type Actor struct {
	Role string
	ID   string
}

type BookingService struct {
	store    store.Store
	notifier Notifier
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	loc      *time.Location
	now      func() time.Time
}

// Book reserves (date, tm) with the doctor for the user and records the
// appointment. The slot is claimed first; if the appointment cannot be
// written afterwards the claim is given back.
func (s *BookingService) Book(ctx context.Context, userID, docID, date, tm string) (*models.Appointment, error) {
	if err := slots.Validate(date, tm); err != nil {
		s.metrics.Booking("invalid")
		return nil, &Error{Kind: KindValidation, Message: "Invalid slot", Cause: err}
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	doc, err := s.store.GetDoctor(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.Booking("doctor_not_found")
			return nil, newError(KindNotFound, MsgDoctorNotFound)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	if err := s.store.ReserveSlot(ctx, docID, date, tm); err != nil {
		switch {
		case errors.Is(err, store.ErrDoctorUnavailable):
			s.metrics.Booking("doctor_unavailable")
			return nil, newError(KindUnavailable, MsgDoctorNotAvailable)
		case errors.Is(err, store.ErrSlotTaken):
			s.metrics.Booking("slot_taken")
			return nil, newError(KindConflict, MsgSlotBooked)
		case errors.Is(err, store.ErrNotFound):
			s.metrics.Booking("doctor_not_found")
			return nil, newError(KindNotFound, MsgDoctorNotFound)
		}
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	apt := &models.Appointment{
		UserID:   userID,
		DocID:    docID,
		SlotDate: date,
		SlotTime: tm,
		UserData: user.Snapshot(),
		DocData:  doc.Snapshot(),
		Amount:   doc.Fees,
		Date:     s.now().UnixMilli(),
	}
	if err := s.store.CreateAppointment(ctx, apt); err != nil {
		if rerr := s.store.ReleaseSlot(ctx, docID, date, tm); rerr != nil {
			s.log.WithError(rerr).WithFields(logrus.Fields{
				"doc_id": docID, "slot_date": date, "slot_time": tm,
			}).Error("Failed to release slot after appointment insert failed")
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.metrics.Booking("booked")
	s.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID.Hex(), "user_id": userID, "doc_id": docID,
	}).Info("Appointment booked")
	s.notifier.AppointmentBooked(user, apt)
	return apt, nil
}

// Cancel marks the appointment cancelled and frees its slot. Patients may
// only cancel their own appointments; doctors and the admin may cancel any.
// Cancelling an already cancelled appointment succeeds and changes nothing.
func (s *BookingService) Cancel(ctx context.Context, appointmentID string, actor Actor) error {
	apt, err := s.appointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	switch actor.Role {
	case models.RoleAdmin, models.RoleDoctor:
	case models.RoleUser:
		if apt.UserID != actor.ID {
			return newError(KindForbidden, MsgUnauthorizedAction)
		}
	default:
		return newError(KindForbidden, MsgUnauthorizedAction)
	}

	if apt.IsCompleted {
		return newError(KindConflict, MsgAlreadyCompleted)
	}
	// The slot may belong to a newer booking by now; leave it alone.
	if apt.Cancelled {
		return nil
	}

	if err := s.store.MarkCancelled(ctx, appointmentID); err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if err := s.store.ReleaseSlot(ctx, apt.DocID, apt.SlotDate, apt.SlotTime); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("release slot: %w", err)
	}

	s.metrics.Cancellation(actor.Role)
	s.log.WithFields(logrus.Fields{
		"appointment_id": appointmentID, "role": actor.Role, "actor_id": actor.ID,
	}).Info("Appointment cancelled")
	apt.Cancelled = true
	s.notifier.AppointmentCancelled(&apt.UserData, apt)
	return nil
}

// Complete marks an appointment done. Only the doctor it was booked with may
// do so, and never once it has been cancelled.
func (s *BookingService) Complete(ctx context.Context, appointmentID, docID string) error {
	apt, err := s.appointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if apt.DocID != docID {
		return newError(KindForbidden, MsgMarkFailed)
	}
	if apt.Cancelled {
		return newError(KindConflict, MsgAlreadyCancelled)
	}
	if err := s.store.MarkCompleted(ctx, appointmentID); err != nil {
		return fmt.Errorf("complete appointment: %w", err)
	}
	return nil
}

// List returns the appointments matching f in booking order.
func (s *BookingService) List(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	appointments, err := s.store.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// Slots lays out the doctor's next week of half-hour slots. It is a display
// aid; Book remains the only authority on whether a slot can be taken.
func (s *BookingService) Slots(ctx context.Context, docID string) ([]slots.Day, error) {
	doc, err := s.store.GetDoctor(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgDoctorNotFound)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return slots.Week(s.now().In(s.loc), doc.SlotsBooked), nil
}

func (s *BookingService) appointment(ctx context.Context, id string) (*models.Appointment, error) {
	if id == "" {
		return nil, newError(KindValidation, "Appointment ID is required")
	}
	apt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgAppointmentNotFound)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return apt, nil
}
