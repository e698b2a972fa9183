package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/store"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

type DoctorService struct {
	store store.Store
	now   func() time.Time
}

type NewDoctor struct {
	Name       string
	Email      string
	Password   string
	Speciality string
	Degree     string
	Experience string
	About      string
	Fees       float64
	Address    models.Address
	Image      string
}

// Add registers a doctor. New doctors start available with no booked slots.
func (s *DoctorService) Add(ctx context.Context, in NewDoctor) (*models.Doctor, error) {
	in.Email = normalizeEmail(in.Email)
	for _, v := range []string{in.Name, in.Email, in.Password, in.Speciality, in.Degree, in.Experience, in.About} {
		if strings.TrimSpace(v) == "" {
			return nil, newError(KindValidation, "Please fill all fields")
		}
	}
	if in.Fees <= 0 {
		return nil, newError(KindValidation, "Fees must be a positive amount")
	}
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	doc := &models.Doctor{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hash,
		Image:       in.Image,
		Speciality:  in.Speciality,
		Degree:      in.Degree,
		Experience:  in.Experience,
		About:       in.About,
		Available:   true,
		Fees:        in.Fees,
		Address:     in.Address,
		Date:        s.now().UnixMilli(),
		SlotsBooked: map[string][]string{},
	}
	if err := s.store.CreateDoctor(ctx, doc); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, newError(KindConflict, MsgEmailTaken)
		}
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	doc.Password = ""
	return doc, nil
}

// List returns every doctor without credentials.
func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	for i := range doctors {
		doctors[i].Password = ""
	}
	return doctors, nil
}

// ListPublic is List without contact emails, for the patient app.
func (s *DoctorService) ListPublic(ctx context.Context) ([]models.Doctor, error) {
	doctors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		doctors[i] = doctors[i].Public()
	}
	return doctors, nil
}

// ToggleAvailability flips the doctor's available flag and returns the new value.
func (s *DoctorService) ToggleAvailability(ctx context.Context, docID string) (bool, error) {
	doc, err := s.get(ctx, docID)
	if err != nil {
		return false, err
	}
	if err := s.store.SetAvailability(ctx, docID, !doc.Available); err != nil {
		return false, fmt.Errorf("set availability: %w", err)
	}
	return !doc.Available, nil
}

func (s *DoctorService) Profile(ctx context.Context, docID string) (*models.Doctor, error) {
	doc, err := s.get(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Password = ""
	return doc, nil
}

func (s *DoctorService) UpdateProfile(ctx context.Context, docID string, upd models.DoctorProfileUpdate) error {
	if upd.Fees != nil && *upd.Fees <= 0 {
		return newError(KindValidation, "Fees must be a positive amount")
	}
	if err := s.store.UpdateDoctorProfile(ctx, docID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(KindNotFound, MsgDoctorNotFound)
		}
		return fmt.Errorf("update doctor: %w", err)
	}
	return nil
}

func (s *DoctorService) get(ctx context.Context, docID string) (*models.Doctor, error) {
	if docID == "" {
		return nil, newError(KindValidation, "Doctor ID is required")
	}
	doc, err := s.store.GetDoctor(ctx, docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgDoctorNotFound)
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return doc, nil
}
