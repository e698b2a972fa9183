package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/services"
)

// AddDoctor registers a doctor from the admin console's multipart form.
// The address field carries a JSON object.
func (h *Handler) AddDoctor(c *gin.Context) {
	fees, err := strconv.ParseFloat(c.PostForm("fees"), 64)
	if err != nil {
		badRequest(c, "Fees must be a number")
		return
	}
	var address models.Address
	if raw := c.PostForm("address"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			badRequest(c, "Address must be a JSON object")
			return
		}
	}

	image, err := h.saveUploadedImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	doc, err := h.Services.Doctors.Add(c.Request.Context(), services.NewDoctor{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Password:   c.PostForm("password"),
		Speciality: c.PostForm("speciality"),
		Degree:     c.PostForm("degree"),
		Experience: c.PostForm("experience"),
		About:      c.PostForm("about"),
		Fees:       fees,
		Address:    address,
		Image:      image,
	})
	if err != nil {
		h.discardImage(c, image)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Doctor Added", "doctor": doc})
}

// AllDoctors lists every doctor for the admin console.
func (h *Handler) AllDoctors(c *gin.Context) {
	doctors, err := h.Services.Doctors.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "doctors": doctors})
}

// DoctorList is the public catalogue shown to patients.
func (h *Handler) DoctorList(c *gin.Context) {
	doctors, err := h.Services.Doctors.ListPublic(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "doctors": doctors})
}

type docIDRequest struct {
	DocID string `json:"docId"`
}

// ChangeAvailability toggles a doctor's availability. Admins name the doctor
// in the body; doctors always toggle themselves.
func (h *Handler) ChangeAvailability(c *gin.Context) {
	docID := middleware.UserID(c)
	if c.GetString(middleware.UserRoleKey) == models.RoleAdmin {
		var req docIDRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.DocID == "" {
			badRequest(c, "Doctor ID is required")
			return
		}
		docID = req.DocID
	}

	available, err := h.Services.Doctors.ToggleAvailability(c.Request.Context(), docID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Availability Changed", "available": available})
}

func (h *Handler) DoctorProfile(c *gin.Context) {
	doc, err := h.Services.Doctors.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profileData": doc})
}

type updateDoctorRequest struct {
	Fees      *float64        `json:"fees"`
	Address   *models.Address `json:"address"`
	Available *bool           `json:"available"`
	About     *string         `json:"about"`
}

// UpdateDoctorProfile changes only the fields present in the body.
func (h *Handler) UpdateDoctorProfile(c *gin.Context) {
	var req updateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	docID := middleware.UserID(c)
	err := h.Services.Doctors.UpdateProfile(c.Request.Context(), docID, models.DoctorProfileUpdate{
		Fees:      req.Fees,
		Address:   req.Address,
		Available: req.Available,
		About:     req.About,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.Services.Doctors.Profile(c.Request.Context(), docID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile Updated", "updatedProfile": updated})
}

// DoctorSlots returns the next week of bookable slots for a doctor.
func (h *Handler) DoctorSlots(c *gin.Context) {
	week, err := h.Services.Booking.Slots(c.Request.Context(), c.Param("docId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "slots": week})
}
