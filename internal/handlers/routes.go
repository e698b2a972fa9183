package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/metrics"
	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

// RegisterRoutes mounts the admin, doctor and patient APIs on r.
func RegisterRoutes(r *gin.Engine, h *Handler, tm *utils.TokenManager, m *metrics.Metrics) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	api.GET("/images/:id", h.GetImage)

	admin := api.Group("/admin")
	{
		admin.POST("/login", h.LoginAdmin)

		authed := admin.Group("", middleware.AdminAuth(tm))
		authed.POST("/add-doctor", h.AddDoctor)
		authed.POST("/all-doctors", h.AllDoctors)
		authed.POST("/change-availablity", h.ChangeAvailability)
		authed.GET("/appointments", h.AllAppointments)
		authed.POST("/cancel-appointment", h.CancelAppointment)
		authed.GET("/dashboard", h.AdminDashboard)
	}

	doctor := api.Group("/doctor")
	{
		doctor.GET("/list", h.DoctorList)
		doctor.POST("/login", h.LoginDoctor)

		authed := doctor.Group("", middleware.DoctorAuth(tm))
		authed.GET("/appointments", h.DoctorAppointments)
		authed.POST("/complete-appointment", h.CompleteAppointment)
		authed.POST("/cancel-appointment", h.CancelAppointment)
		authed.GET("/dashboard", h.DoctorDashboard)
		authed.GET("/profile", h.DoctorProfile)
		authed.POST("/update-profile", h.UpdateDoctorProfile)
		authed.POST("/change-availability", h.ChangeAvailability)
	}

	user := api.Group("/user")
	{
		user.POST("/register", h.RegisterUser)
		user.POST("/login", h.LoginUser)
		user.GET("/doctors/:docId/slots", h.DoctorSlots)

		authed := user.Group("", middleware.UserAuth(tm))
		authed.GET("/get-profile", h.GetUserProfile)
		authed.POST("/update-profile", h.UpdateUserProfile)
		authed.POST("/book-appointment", h.BookAppointment)
		authed.GET("/appointments", h.UserAppointments)
		authed.POST("/cancel-appointment", h.CancelAppointment)
		authed.POST("/cancel-appointments", h.CancelAppointment)
		authed.POST("/payment-razorpay", h.PaymentRazorpay)
		authed.POST("/verify-payment", h.VerifyPayment)
	}
}
