package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/store"
)

func TestBookFreeSlot(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")

	apt := f.book(t, user, doc, slotDate, slotTime)

	assert.Equal(t, user.ID.Hex(), apt.UserID)
	assert.Equal(t, doc.ID.Hex(), apt.DocID)
	assert.Equal(t, 50.0, apt.Amount)
	assert.Equal(t, f.now.UnixMilli(), apt.Date)
	assert.False(t, apt.Cancelled || apt.IsCompleted || apt.Payment)
	assert.Empty(t, apt.UserData.Password)
	assert.Empty(t, apt.DocData.Password)
	assert.Nil(t, apt.DocData.SlotsBooked)
	assert.Equal(t, doc.Name, apt.DocData.Name)

	live, err := f.store.GetDoctor(f.ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{slotTime}, live.SlotsBooked[slotDate])
	assert.Equal(t, []string{apt.ID.Hex()}, f.notifier.booked)
}

func TestBookTakenSlotFails(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	ann := f.addUser(t, "ann@docbook.test")
	bob := f.addUser(t, "bob@docbook.test")

	f.book(t, ann, doc, slotDate, slotTime)
	_, err := f.svc.Booking.Book(f.ctx, bob.ID.Hex(), doc.ID.Hex(), slotDate, slotTime)
	requireKind(t, err, KindConflict, MsgSlotBooked)

	n, _ := f.store.CountAppointments(f.ctx)
	assert.EqualValues(t, 1, n)
}

func TestBookSnapshotsFeeAtBookingTime(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")

	first := f.book(t, user, doc, slotDate, slotTime)
	fees := 80.0
	require.NoError(t, f.svc.Doctors.UpdateProfile(f.ctx, doc.ID.Hex(), models.DoctorProfileUpdate{Fees: &fees}))
	second := f.book(t, user, doc, slotDate, "10:30 AM")

	assert.Equal(t, 50.0, first.Amount)
	assert.Equal(t, 80.0, second.Amount)
	stored, _ := f.store.GetAppointment(f.ctx, first.ID.Hex())
	assert.Equal(t, 50.0, stored.DocData.Fees)
}

func TestBookRejections(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")

	_, err := f.svc.Booking.Book(f.ctx, user.ID.Hex(), "64b7f0c2e4b0a1a2b3c4d5e6", slotDate, slotTime)
	requireKind(t, err, KindNotFound, MsgDoctorNotFound)

	_, err = f.svc.Booking.Book(f.ctx, user.ID.Hex(), doc.ID.Hex(), "tomorrow", slotTime)
	requireKind(t, err, KindValidation, "")

	_, err = f.svc.Booking.Book(f.ctx, user.ID.Hex(), doc.ID.Hex(), slotDate, "10am")
	requireKind(t, err, KindValidation, "")

	_, err = f.svc.Booking.Book(f.ctx, "nobody", doc.ID.Hex(), slotDate, slotTime)
	requireKind(t, err, KindNotFound, MsgUserNotFound)

	available, err := f.svc.Doctors.ToggleAvailability(f.ctx, doc.ID.Hex())
	require.NoError(t, err)
	require.False(t, available)
	_, err = f.svc.Booking.Book(f.ctx, user.ID.Hex(), doc.ID.Hex(), slotDate, slotTime)
	requireKind(t, err, KindUnavailable, MsgDoctorNotAvailable)

	n, _ := f.store.CountAppointments(f.ctx)
	assert.Zero(t, n)
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)

	const patients = 16
	users := make([]*models.User, patients)
	for i := range users {
		users[i] = f.addUser(t, string(rune('a'+i))+"@docbook.test")
	}

	var wg sync.WaitGroup
	errs := make([]error, patients)
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Booking.Book(f.ctx, u.ID.Hex(), doc.ID.Hex(), slotDate, slotTime)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, IsKind(err, KindConflict))
	}
	assert.Equal(t, 1, ok)
	n, _ := f.store.CountAppointments(f.ctx)
	assert.EqualValues(t, 1, n)
}

// failingAppointments makes the appointment insert fail after the slot was claimed.
type failingAppointments struct {
	*store.Memory
}

func (failingAppointments) CreateAppointment(context.Context, *models.Appointment) error {
	return errors.New("write conflict")
}

func TestBookReleasesSlotWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")
	f.svc.Booking.store = failingAppointments{f.store}

	_, err := f.svc.Booking.Book(f.ctx, user.ID.Hex(), doc.ID.Hex(), slotDate, slotTime)
	require.Error(t, err)
	_, typed := AsError(err)
	assert.False(t, typed)

	live, _ := f.store.GetDoctor(f.ctx, doc.ID.Hex())
	assert.Empty(t, live.SlotsBooked[slotDate])
}

func TestCancelReleasesSlotAndIsRepeatable(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")
	apt := f.book(t, user, doc, slotDate, slotTime)
	actor := Actor{Role: models.RoleUser, ID: user.ID.Hex()}

	require.NoError(t, f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), actor))

	got, _ := f.store.GetAppointment(f.ctx, apt.ID.Hex())
	assert.True(t, got.Cancelled)
	live, _ := f.store.GetDoctor(f.ctx, doc.ID.Hex())
	assert.NotContains(t, live.SlotsBooked[slotDate], slotTime)

	require.NoError(t, f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), actor))
	assert.Len(t, f.notifier.cancelled, 1)

	// The freed slot can be booked again.
	f.book(t, user, doc, slotDate, slotTime)
}

func TestCancelAgainAfterRebookKeepsSlot(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	ann := f.addUser(t, "ann@docbook.test")
	bob := f.addUser(t, "bob@docbook.test")
	carl := f.addUser(t, "carl@docbook.test")
	annActor := Actor{Role: models.RoleUser, ID: ann.ID.Hex()}

	first := f.book(t, ann, doc, slotDate, slotTime)
	require.NoError(t, f.svc.Booking.Cancel(f.ctx, first.ID.Hex(), annActor))
	f.book(t, bob, doc, slotDate, slotTime)

	require.NoError(t, f.svc.Booking.Cancel(f.ctx, first.ID.Hex(), annActor))

	live, _ := f.store.GetDoctor(f.ctx, doc.ID.Hex())
	assert.Equal(t, []string{slotTime}, live.SlotsBooked[slotDate])
	_, err := f.svc.Booking.Book(f.ctx, carl.ID.Hex(), doc.ID.Hex(), slotDate, slotTime)
	requireKind(t, err, KindConflict, MsgSlotBooked)
	assert.Len(t, f.notifier.cancelled, 1)
}

func TestCancelDoesNotTouchOtherSlots(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")
	apt := f.book(t, user, doc, slotDate, slotTime)
	f.book(t, user, doc, slotDate, "11:00 AM")

	require.NoError(t, f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), Actor{Role: models.RoleAdmin}))

	live, _ := f.store.GetDoctor(f.ctx, doc.ID.Hex())
	assert.Equal(t, []string{"11:00 AM"}, live.SlotsBooked[slotDate])
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	other := f.addDoctor(t, "house@docbook.test", 70)
	ann := f.addUser(t, "ann@docbook.test")
	bob := f.addUser(t, "bob@docbook.test")
	apt := f.book(t, ann, doc, slotDate, slotTime)

	err := f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), Actor{Role: models.RoleUser, ID: bob.ID.Hex()})
	requireKind(t, err, KindForbidden, MsgUnauthorizedAction)

	err = f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), Actor{Role: "guest", ID: bob.ID.Hex()})
	requireKind(t, err, KindForbidden, MsgUnauthorizedAction)

	err = f.svc.Booking.Cancel(f.ctx, "64b7f0c2e4b0a1a2b3c4d5e6", Actor{Role: models.RoleAdmin})
	requireKind(t, err, KindNotFound, MsgAppointmentNotFound)

	got, _ := f.store.GetAppointment(f.ctx, apt.ID.Hex())
	assert.False(t, got.Cancelled)

	// Doctors may cancel any appointment, not only their own.
	require.NoError(t, f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), Actor{Role: models.RoleDoctor, ID: other.ID.Hex()}))
	got, _ = f.store.GetAppointment(f.ctx, apt.ID.Hex())
	assert.True(t, got.Cancelled)
	assert.Equal(t, []string{apt.ID.Hex()}, f.notifier.cancelled)
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	other := f.addDoctor(t, "house@docbook.test", 70)
	user := f.addUser(t, "ann@docbook.test")
	apt := f.book(t, user, doc, slotDate, slotTime)

	err := f.svc.Booking.Complete(f.ctx, apt.ID.Hex(), other.ID.Hex())
	requireKind(t, err, KindForbidden, MsgMarkFailed)
	got, _ := f.store.GetAppointment(f.ctx, apt.ID.Hex())
	assert.False(t, got.IsCompleted)

	require.NoError(t, f.svc.Booking.Complete(f.ctx, apt.ID.Hex(), doc.ID.Hex()))
	got, _ = f.store.GetAppointment(f.ctx, apt.ID.Hex())
	assert.True(t, got.IsCompleted)

	err = f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), Actor{Role: models.RoleAdmin})
	requireKind(t, err, KindConflict, MsgAlreadyCompleted)
}

func TestCompleteCancelledAppointmentFails(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")
	apt := f.book(t, user, doc, slotDate, slotTime)
	require.NoError(t, f.svc.Booking.Cancel(f.ctx, apt.ID.Hex(), Actor{Role: models.RoleUser, ID: user.ID.Hex()}))

	err := f.svc.Booking.Complete(f.ctx, apt.ID.Hex(), doc.ID.Hex())
	requireKind(t, err, KindConflict, MsgAlreadyCancelled)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	grey := f.addDoctor(t, "grey@docbook.test", 50)
	house := f.addDoctor(t, "house@docbook.test", 70)
	ann := f.addUser(t, "ann@docbook.test")
	bob := f.addUser(t, "bob@docbook.test")
	f.book(t, ann, grey, slotDate, slotTime)
	f.book(t, bob, grey, slotDate, "10:30 AM")
	f.book(t, ann, house, slotDate, slotTime)

	mine, err := f.svc.Booking.List(f.ctx, models.AppointmentFilter{UserID: ann.ID.Hex()})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	greys, _ := f.svc.Booking.List(f.ctx, models.AppointmentFilter{DocID: grey.ID.Hex()})
	assert.Len(t, greys, 2)

	all, _ := f.svc.Booking.List(f.ctx, models.AppointmentFilter{})
	assert.Len(t, all, 3)
}

func TestSlotsReflectBookings(t *testing.T) {
	f := newFixture(t)
	doc := f.addDoctor(t, "grey@docbook.test", 50)
	user := f.addUser(t, "ann@docbook.test")
	f.book(t, user, doc, slotDate, slotTime)

	week, err := f.svc.Booking.Slots(f.ctx, doc.ID.Hex())
	require.NoError(t, err)
	require.Len(t, week, 7)

	day := week[2]
	require.Equal(t, slotDate, day.Date)
	assert.Equal(t, slotTime, day.Slots[0].Time)
	assert.True(t, day.Slots[0].IsBooked)
	assert.False(t, day.Slots[1].IsBooked)

	_, err = f.svc.Booking.Slots(f.ctx, "missing")
	requireKind(t, err, KindNotFound, MsgDoctorNotFound)
}
