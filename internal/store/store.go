// Package store persists users, doctors, appointments and uploaded images.
// Two backends share the same semantics: MongoDB for deployments and an
// in-memory one for tests and local runs.
package store

import (
	"context"
	"errors"
	"io"

	"github.com/harentsoaR/docbook-api/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrDoctorUnavailable = errors.New("doctor not available")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id string, upd models.UserProfileUpdate) error
	CountUsers(ctx context.Context) (int64, error)
}

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d *models.Doctor) error
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)
	GetDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error)
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	CountDoctors(ctx context.Context) (int64, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdateDoctorProfile(ctx context.Context, id string, upd models.DoctorProfileUpdate) error

	// ReserveSlot appends tm to the doctor's slots_booked[date] in a single
	// conditional write. It fails with ErrDoctorUnavailable when the doctor is
	// switched off and ErrSlotTaken when the pair is already present.
	ReserveSlot(ctx context.Context, id, date, tm string) error
	// ReleaseSlot removes every occurrence of tm from slots_booked[date].
	ReleaseSlot(ctx context.Context, id, date, tm string) error
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	// ListAppointments returns matches in insertion order.
	ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error)
	CountAppointments(ctx context.Context) (int64, error)
	MarkCancelled(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	SetOrderID(ctx context.Context, id, orderID string) error
	MarkPaid(ctx context.Context, id, paymentID string) error
}

type Store interface {
	UserStore
	DoctorStore
	AppointmentStore
	Ping(ctx context.Context) error
}

type Image struct {
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type ImageStore interface {
	SaveImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	OpenImage(ctx context.Context, id string) (*Image, error)
	DeleteImage(ctx context.Context, id string) error
}
