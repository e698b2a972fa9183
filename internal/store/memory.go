package store

import (
	"bytes"
	"context"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/docbook-api/internal/models"
)

// Memory is a mutex-guarded Store. Every method works on copies so callers
// never share maps or slices with the stored records.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]models.User
	doctors      map[string]models.Doctor
	doctorOrder  []string
	appointments map[string]models.Appointment
	apptOrder    []string
	images       map[string]memoryImage
}

type memoryImage struct {
	contentType string
	data        []byte
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]models.User),
		doctors:      make(map[string]models.Doctor),
		appointments: make(map[string]models.Appointment),
		images:       make(map[string]memoryImage),
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

// --- users ---

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID.Hex()] = *u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateUserProfile(_ context.Context, id string, upd models.UserProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Name, u.Phone, u.Address, u.Dob, u.Gender = upd.Name, upd.Phone, upd.Address, upd.Dob, upd.Gender
	if upd.Image != "" {
		u.Image = upd.Image
	}
	m.users[id] = u
	return nil
}

func (m *Memory) CountUsers(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// --- doctors ---

func (m *Memory) CreateDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.doctors {
		if strings.EqualFold(existing.Email, d.Email) {
			return ErrDuplicateEmail
		}
	}
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	m.doctors[d.ID.Hex()] = cloneDoctor(*d)
	m.doctorOrder = append(m.doctorOrder, d.ID.Hex())
	return nil
}

func (m *Memory) GetDoctor(_ context.Context, id string) (*models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	d = cloneDoctor(d)
	return &d, nil
}

func (m *Memory) GetDoctorByEmail(_ context.Context, email string) (*models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.doctors {
		if strings.EqualFold(d.Email, email) {
			d = cloneDoctor(d)
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListDoctors(context.Context) ([]models.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Doctor, 0, len(m.doctorOrder))
	for _, id := range m.doctorOrder {
		out = append(out, cloneDoctor(m.doctors[id]))
	}
	return out, nil
}

func (m *Memory) CountDoctors(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.doctors)), nil
}

func (m *Memory) SetAvailability(_ context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok {
		return ErrNotFound
	}
	d.Available = available
	m.doctors[id] = d
	return nil
}

func (m *Memory) UpdateDoctorProfile(_ context.Context, id string, upd models.DoctorProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Fees != nil {
		d.Fees = *upd.Fees
	}
	if upd.Address != nil {
		d.Address = *upd.Address
	}
	if upd.Available != nil {
		d.Available = *upd.Available
	}
	if upd.About != nil {
		d.About = *upd.About
	}
	m.doctors[id] = d
	return nil
}

func (m *Memory) ReserveSlot(_ context.Context, id, date, tm string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	switch {
	case !ok:
		return ErrNotFound
	case !d.Available:
		return ErrDoctorUnavailable
	case slices.Contains(d.SlotsBooked[date], tm):
		return ErrSlotTaken
	}
	if d.SlotsBooked == nil {
		d.SlotsBooked = make(map[string][]string)
	}
	d.SlotsBooked[date] = append(slices.Clone(d.SlotsBooked[date]), tm)
	m.doctors[id] = d
	return nil
}

func (m *Memory) ReleaseSlot(_ context.Context, id, date, tm string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok {
		return ErrNotFound
	}
	if times, ok := d.SlotsBooked[date]; ok {
		d.SlotsBooked[date] = slices.DeleteFunc(slices.Clone(times), func(s string) bool { return s == tm })
		m.doctors[id] = d
	}
	return nil
}

// --- appointments ---

func (m *Memory) CreateAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.appointments[a.ID.Hex()] = *a
	m.apptOrder = append(m.apptOrder, a.ID.Hex())
	return nil
}

func (m *Memory) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) ListAppointments(_ context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Appointment, 0)
	for _, id := range m.apptOrder {
		a := m.appointments[id]
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.DocID != "" && a.DocID != f.DocID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *Memory) CountAppointments(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.appointments)), nil
}

func (m *Memory) MarkCancelled(_ context.Context, id string) error {
	return m.updateAppointment(id, func(a *models.Appointment) { a.Cancelled = true })
}

func (m *Memory) MarkCompleted(_ context.Context, id string) error {
	return m.updateAppointment(id, func(a *models.Appointment) { a.IsCompleted = true })
}

func (m *Memory) SetOrderID(_ context.Context, id, orderID string) error {
	return m.updateAppointment(id, func(a *models.Appointment) { a.OrderID = orderID })
}

func (m *Memory) MarkPaid(_ context.Context, id, paymentID string) error {
	return m.updateAppointment(id, func(a *models.Appointment) {
		a.Payment = true
		a.PaymentID = paymentID
	})
}

func (m *Memory) updateAppointment(id string, fn func(*models.Appointment)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return ErrNotFound
	}
	fn(&a)
	m.appointments[id] = a
	return nil
}

// --- images ---

func (m *Memory) SaveImage(_ context.Context, _ string, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id := primitive.NewObjectID().Hex()

	m.mu.Lock()
	m.images[id] = memoryImage{contentType: contentType, data: data}
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) OpenImage(_ context.Context, id string) (*Image, error) {
	m.mu.RLock()
	img, ok := m.images[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &Image{
		ContentType: img.contentType,
		Size:        int64(len(img.data)),
		Body:        io.NopCloser(bytes.NewReader(img.data)),
	}, nil
}

func (m *Memory) DeleteImage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[id]; !ok {
		return ErrNotFound
	}
	delete(m.images, id)
	return nil
}

func cloneDoctor(d models.Doctor) models.Doctor {
	if d.SlotsBooked != nil {
		d.SlotsBooked = maps.Clone(d.SlotsBooked)
		for k, v := range d.SlotsBooked {
			d.SlotsBooked[k] = slices.Clone(v)
		}
	}
	return d
}

var (
	_ Store      = (*Memory)(nil)
	_ ImageStore = (*Memory)(nil)
)
