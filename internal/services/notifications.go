package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/docbook-api/internal/models"
)

const textbeltURL = "https://textbelt.com/text"

// Notifier tells patients about changes to their appointments. Calls must
// not block the request that triggered them.
type Notifier interface {
	AppointmentBooked(user *models.User, apt *models.Appointment)
	AppointmentCancelled(user *models.User, apt *models.Appointment)
}

// NotificationService sends SMS through Textbelt.
type NotificationService struct {
	apiKey string
	url    string
	client *http.Client
	log    logrus.FieldLogger
}

func NewNotificationService(apiKey string, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{
		apiKey: apiKey,
		url:    textbeltURL,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

func (s *NotificationService) AppointmentBooked(user *models.User, apt *models.Appointment) {
	s.send(user, fmt.Sprintf(
		"Appointment Confirmed: %s with %s on %s at %s.",
		user.Name, apt.DocData.Name, apt.SlotDate, apt.SlotTime,
	))
}

func (s *NotificationService) AppointmentCancelled(user *models.User, apt *models.Appointment) {
	s.send(user, fmt.Sprintf(
		"Appointment Cancelled: %s with %s on %s at %s.",
		user.Name, apt.DocData.Name, apt.SlotDate, apt.SlotTime,
	))
}

func (s *NotificationService) send(user *models.User, message string) {
	if user.Phone == "" || user.Phone == models.DefaultPhone {
		s.log.WithField("user_id", user.ID.Hex()).Debug("SMS not sent: patient has no phone number")
		return
	}
	if s.apiKey == "" {
		s.log.Debug("SMS not sent: TEXTBELT_API_KEY is not set")
		return
	}
	go s.sendSMS(user.Phone, message)
}

func (s *NotificationService) sendSMS(phone, message string) {
	postBody, _ := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})

	resp, err := s.client.Post(s.url, "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		s.log.WithError(err).WithField("phone", phone).Warn("Failed to send Textbelt request")
		return
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&result)

	if !result.Success {
		s.log.WithField("phone", phone).WithField("reason", result.Error).Warn("Failed to send SMS via Textbelt")
		return
	}
	s.log.WithField("phone", phone).Info("Sent SMS via Textbelt")
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) AppointmentBooked(*models.User, *models.Appointment)    {}
func (NopNotifier) AppointmentCancelled(*models.User, *models.Appointment) {}
