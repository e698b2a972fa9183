package services

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/docbook-api/internal/metrics"
	"github.com/harentsoaR/docbook-api/internal/payments"
	"github.com/harentsoaR/docbook-api/internal/store"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

var validate = validator.New()

type Options struct {
	AdminEmail    string
	AdminPassword string

	Currency      string
	PaymentSecret string

	// Location decides which calendar day a slot belongs to.
	Location *time.Location
	Now      func() time.Time
}

type Services struct {
	Accounts  *AccountService
	Doctors   *DoctorService
	Booking   *BookingService
	Dashboard *DashboardService
	Payments  *PaymentService
}

func New(st store.Store, tokens *utils.TokenManager, gateway payments.Gateway, notifier Notifier, m *metrics.Metrics, log logrus.FieldLogger, opts Options) *Services {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Services{
		Accounts: &AccountService{
			store:         st,
			tokens:        tokens,
			adminEmail:    opts.AdminEmail,
			adminPassword: opts.AdminPassword,
		},
		Doctors: &DoctorService{store: st, now: opts.Now},
		Booking: &BookingService{
			store:    st,
			notifier: notifier,
			metrics:  m,
			log:      log,
			loc:      opts.Location,
			now:      opts.Now,
		},
		Dashboard: &DashboardService{store: st},
		Payments: &PaymentService{
			store:    st,
			gateway:  gateway,
			metrics:  m,
			log:      log,
			currency: opts.Currency,
			secret:   opts.PaymentSecret,
		},
	}
}
