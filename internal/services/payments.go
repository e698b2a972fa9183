package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/docbook-api/internal/metrics"
	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/payments"
	"github.com/harentsoaR/docbook-api/internal/store"
)

type PaymentService struct {
	store    store.Store
	gateway  payments.Gateway
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	currency string
	secret   string
}

type PaymentConfirmation struct {
	AppointmentID string
	OrderID       string
	PaymentID     string
	Signature     string
}

// CreateOrder opens a provider order for the appointment fee.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, appointmentID string) (*payments.Order, error) {
	apt, err := s.payable(ctx, userID, appointmentID)
	if err != nil {
		s.metrics.Payment("order", "rejected")
		return nil, err
	}

	amount := int64(math.Round(apt.Amount * 100))
	order, err := s.gateway.CreateOrder(ctx, amount, s.currency, appointmentID)
	if err != nil {
		s.metrics.Payment("order", "error")
		if errors.Is(err, payments.ErrNotConfigured) {
			return nil, &Error{Kind: KindNotConfigured, Message: "Online payment is not available", Cause: err}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := s.store.SetOrderID(ctx, appointmentID, order.ID); err != nil {
		return nil, fmt.Errorf("store order id: %w", err)
	}

	s.metrics.Payment("order", "created")
	return order, nil
}

// Verify checks the provider signature and marks the appointment paid. A
// bad signature leaves the appointment untouched.
func (s *PaymentService) Verify(ctx context.Context, userID string, in PaymentConfirmation) error {
	apt, err := s.payable(ctx, userID, in.AppointmentID)
	if err != nil {
		s.metrics.Payment("verify", "rejected")
		return err
	}

	// An order only pays the appointment it was opened for.
	if apt.OrderID == "" || apt.OrderID != in.OrderID {
		s.metrics.Payment("verify", "rejected")
		return newError(KindValidation, MsgPaymentFailed)
	}
	if !payments.VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.secret) {
		s.metrics.Payment("verify", "rejected")
		s.log.WithFields(logrus.Fields{
			"appointment_id": in.AppointmentID, "order_id": in.OrderID,
		}).Warn("Payment signature mismatch")
		return newError(KindValidation, MsgPaymentFailed)
	}

	if err := s.store.MarkPaid(ctx, in.AppointmentID, in.PaymentID); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	s.metrics.Payment("verify", "paid")
	return nil
}

// payable loads an appointment the user owns that can still take a payment.
func (s *PaymentService) payable(ctx context.Context, userID, appointmentID string) (*models.Appointment, error) {
	if appointmentID == "" {
		return nil, newError(KindValidation, "Appointment ID is required")
	}
	apt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgPaymentUnavailable)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if apt.UserID != userID {
		return nil, newError(KindForbidden, MsgUnauthorizedAction)
	}
	if apt.Cancelled {
		return nil, newError(KindConflict, MsgPaymentUnavailable)
	}
	if apt.Payment {
		return nil, newError(KindConflict, MsgAlreadyPaid)
	}
	return apt, nil
}
