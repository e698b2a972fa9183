package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/services"
)

type BookAppointmentRequest struct {
	DocID    string `json:"docId" binding:"required"`
	SlotDate string `json:"slotDate" binding:"required"`
	SlotTime string `json:"slotTime" binding:"required"`
}

type appointmentIDRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// BookAppointment books a slot for the signed-in patient. The patient is
// always taken from the token, never from the body.
func (h *Handler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "docId, slotDate and slotTime are required")
		return
	}

	apt, err := h.Services.Booking.Book(c.Request.Context(), middleware.UserID(c), req.DocID, req.SlotDate, req.SlotTime)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Appointment Booked", "appointment": apt})
}

// UserAppointments lists the signed-in patient's appointments.
func (h *Handler) UserAppointments(c *gin.Context) {
	h.listAppointments(c, models.AppointmentFilter{UserID: middleware.UserID(c)})
}

// DoctorAppointments lists the signed-in doctor's appointments.
func (h *Handler) DoctorAppointments(c *gin.Context) {
	h.listAppointments(c, models.AppointmentFilter{DocID: middleware.UserID(c)})
}

// AllAppointments lists every appointment for the admin console.
func (h *Handler) AllAppointments(c *gin.Context) {
	h.listAppointments(c, models.AppointmentFilter{})
}

func (h *Handler) listAppointments(c *gin.Context, f models.AppointmentFilter) {
	appointments, err := h.Services.Booking.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

// CancelAppointment serves the patient, doctor and admin cancel routes. The
// role set by the auth middleware decides which appointments may be touched.
func (h *Handler) CancelAppointment(c *gin.Context) {
	var req appointmentIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Appointment ID is required")
		return
	}

	actor := services.Actor{Role: c.GetString(middleware.UserRoleKey), ID: middleware.UserID(c)}
	if err := h.Services.Booking.Cancel(c.Request.Context(), req.AppointmentID, actor); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment Cancelled"})
}

// CompleteAppointment lets a doctor mark one of their appointments done.
func (h *Handler) CompleteAppointment(c *gin.Context) {
	var req appointmentIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Appointment ID is required")
		return
	}

	if err := h.Services.Booking.Complete(c.Request.Context(), req.AppointmentID, middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment Completed"})
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	dash, err := h.Services.Dashboard.Admin(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashData": dash})
}

func (h *Handler) DoctorDashboard(c *gin.Context) {
	dash, err := h.Services.Dashboard.Doctor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashData": dash})
}
