package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/models"
)

type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterUser creates a patient account and logs it in.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing Details")
		return
	}

	token, err := h.Services.Accounts.RegisterUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Registration successful", "token": token})
}

func (h *Handler) LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing Details")
		return
	}

	token, err := h.Services.Accounts.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (h *Handler) LoginDoctor(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing Details")
		return
	}

	token, err := h.Services.Accounts.LoginDoctor(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (h *Handler) LoginAdmin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing Details")
		return
	}

	token, err := h.Services.Accounts.LoginAdmin(req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// GetUserProfile returns the signed-in patient's profile.
func (h *Handler) GetUserProfile(c *gin.Context) {
	user, err := h.Services.Accounts.UserProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userData": user})
}

type updateUserRequest struct {
	Name    string         `json:"name" form:"name"`
	Phone   string         `json:"phone" form:"phone"`
	Address models.Address `json:"address" form:"-"`
	Dob     string         `json:"dob" form:"dob"`
	Gender  string         `json:"gender" form:"gender"`
}

// UpdateUserProfile accepts JSON, or a multipart form whose address field is
// a JSON string and whose optional image field is a picture file.
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	var req updateUserRequest
	var image string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
		if raw := c.PostForm("address"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Address); err != nil {
				badRequest(c, "Address must be a JSON object")
				return
			}
		}
		url, err := h.saveUploadedImage(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		image = url
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	err := h.Services.Accounts.UpdateUserProfile(c.Request.Context(), middleware.UserID(c), models.UserProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Dob:     req.Dob,
		Gender:  req.Gender,
		Image:   image,
	})
	if err != nil {
		h.discardImage(c, image)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile Updated"})
}
