package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/services"
)

type VerifyPaymentRequest struct {
	AppointmentID     string `json:"appointmentId" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// PaymentRazorpay opens a payment order for one of the patient's appointments.
func (h *Handler) PaymentRazorpay(c *gin.Context) {
	var req appointmentIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Appointment ID is required")
		return
	}

	order, err := h.Services.Payments.CreateOrder(c.Request.Context(), middleware.UserID(c), req.AppointmentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// VerifyPayment confirms a completed checkout from the provider's callback fields.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Payment details are incomplete")
		return
	}

	err := h.Services.Payments.Verify(c.Request.Context(), middleware.UserID(c), services.PaymentConfirmation{
		AppointmentID: req.AppointmentID,
		OrderID:       req.RazorpayOrderID,
		PaymentID:     req.RazorpayPaymentID,
		Signature:     req.RazorpaySignature,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment Successful"})
}
