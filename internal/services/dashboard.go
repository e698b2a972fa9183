package services

import (
	"context"
	"fmt"

	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/store"
)

const latestLimit = 5

type DashboardService struct {
	store store.Store
}

type AdminDashboard struct {
	Doctors            int64                `json:"doctors"`
	Appointments       int64                `json:"appointments"`
	Patients           int64                `json:"patients"`
	LatestAppointments []models.Appointment `json:"latestAppointments"`
}

type DoctorDashboard struct {
	Earning            float64              `json:"earning"`
	Appointments       int                  `json:"appointments"`
	Patients           int                  `json:"patients"`
	LatestAppointments []models.Appointment `json:"latestAppointments"`
}

// Admin counts every collection at request time.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	doctors, err := s.store.CountDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("count doctors: %w", err)
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	count, err := s.store.CountAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	appointments, err := s.store.ListAppointments(ctx, models.AppointmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return &AdminDashboard{
		Doctors:            doctors,
		Appointments:       count,
		Patients:           users,
		LatestAppointments: latest(appointments, latestLimit),
	}, nil
}

// Doctor summarises one doctor's appointments. Earnings count appointments
// that were either completed or paid.
func (s *DashboardService) Doctor(ctx context.Context, docID string) (*DoctorDashboard, error) {
	appointments, err := s.store.ListAppointments(ctx, models.AppointmentFilter{DocID: docID})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	var earning float64
	patients := make(map[string]struct{})
	for _, a := range appointments {
		if a.IsCompleted || a.Payment {
			earning += a.Amount
		}
		patients[a.UserID] = struct{}{}
	}

	return &DoctorDashboard{
		Earning:            earning,
		Appointments:       len(appointments),
		Patients:           len(patients),
		LatestAppointments: latest(appointments, latestLimit),
	}, nil
}

// latest returns up to n appointments, newest first.
func latest(appointments []models.Appointment, n int) []models.Appointment {
	out := make([]models.Appointment, 0, min(n, len(appointments)))
	for i := len(appointments) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, appointments[i])
	}
	return out
}
