package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/docbook-api/internal/models"
)

func TestAdminDashboard(t *testing.T) {
	f := newFixture(t)
	grey := f.addDoctor(t, "grey@docbook.test", 50)
	f.addDoctor(t, "house@docbook.test", 70)
	f.addDoctor(t, "wilson@docbook.test", 60)
	ann := f.addUser(t, "ann@docbook.test")

	times := []string{"10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM"}
	var last *models.Appointment
	for _, tm := range times {
		last = f.book(t, ann, grey, slotDate, tm)
	}

	dash, err := f.svc.Dashboard.Admin(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.Doctors)
	assert.EqualValues(t, 1, dash.Patients)
	assert.EqualValues(t, 6, dash.Appointments)
	require.Len(t, dash.LatestAppointments, 5)
	assert.Equal(t, last.ID, dash.LatestAppointments[0].ID)
	assert.Equal(t, "10:30 AM", dash.LatestAppointments[4].SlotTime)
}

func TestAdminDashboardEmpty(t *testing.T) {
	f := newFixture(t)

	dash, err := f.svc.Dashboard.Admin(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, dash.Doctors)
	assert.NotNil(t, dash.LatestAppointments)
	assert.Empty(t, dash.LatestAppointments)
}

func TestDoctorDashboard(t *testing.T) {
	f := newFixture(t)
	grey := f.addDoctor(t, "grey@docbook.test", 50)
	house := f.addDoctor(t, "house@docbook.test", 70)
	ann := f.addUser(t, "ann@docbook.test")
	bob := f.addUser(t, "bob@docbook.test")

	completed := f.book(t, ann, grey, slotDate, "10:00 AM")
	require.NoError(t, f.svc.Booking.Complete(f.ctx, completed.ID.Hex(), grey.ID.Hex()))
	paid := f.book(t, bob, grey, slotDate, "10:30 AM")
	require.NoError(t, f.store.MarkPaid(f.ctx, paid.ID.Hex(), "pay_1"))
	f.book(t, ann, grey, slotDate, "11:00 AM")
	f.book(t, bob, house, slotDate, "10:00 AM")

	dash, err := f.svc.Dashboard.Doctor(f.ctx, grey.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 100.0, dash.Earning)
	assert.Equal(t, 3, dash.Appointments)
	assert.Equal(t, 2, dash.Patients)
	assert.Len(t, dash.LatestAppointments, 3)
}
