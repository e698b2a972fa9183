package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/docbook-api/internal/metrics"
	"github.com/harentsoaR/docbook-api/internal/models"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/private", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role": c.GetString(UserRoleKey)})
	})
	return r
}

func TestAuthMiddlewares(t *testing.T) {
	tm := utils.NewTokenManager("test-secret", time.Hour)
	userToken, err := tm.Generate("user-1", models.RoleUser)
	require.NoError(t, err)
	doctorToken, err := tm.Generate("doc-1", models.RoleDoctor)
	require.NoError(t, err)
	adminToken, err := tm.Generate("admin@docbook.test", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mw     gin.HandlerFunc
		header string
		value  string
		status int
	}{
		{"user header", UserAuth(tm), "token", userToken, http.StatusOK},
		{"user bearer", UserAuth(tm), "Authorization", "Bearer " + userToken, http.StatusOK},
		{"doctor d-token", DoctorAuth(tm), "d-token", doctorToken, http.StatusOK},
		{"doctor dtoken", DoctorAuth(tm), "dtoken", doctorToken, http.StatusOK},
		{"admin atoken", AdminAuth(tm), "atoken", adminToken, http.StatusOK},
		{"missing token", UserAuth(tm), "", "", http.StatusUnauthorized},
		{"garbage token", UserAuth(tm), "token", "not-a-jwt", http.StatusUnauthorized},
		{"user token on admin route", AdminAuth(tm), "atoken", userToken, http.StatusForbidden},
		{"doctor token on user route", UserAuth(tm), "token", doctorToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			protectedRouter(tt.mw).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.JSONEq(t, `{"success":false,"message":"Not Authorized Login Again"}`, w.Body.String())
			}
		})
	}
}

func TestAuthSetsContext(t *testing.T) {
	tm := utils.NewTokenManager("test-secret", time.Hour)
	token, err := tm.Generate("doc-42", models.RoleDoctor)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("d-token", token)
	w := httptest.NewRecorder()
	protectedRouter(DoctorAuth(tm)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"doc-42","role":"doctor"}`, w.Body.String())
}

func TestAuthRejectsOtherSecret(t *testing.T) {
	forged, err := utils.NewTokenManager("other-secret", time.Hour).Generate("user-1", models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("token", forged)
	w := httptest.NewRecorder()
	protectedRouter(UserAuth(utils.NewTokenManager("test-secret", time.Hour))).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Contains(t, buf.String(), `"request_id":"`+generated+`"`)
	assert.Contains(t, buf.String(), `"msg":"Request processed"`)

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"status_code":500`)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/user/doctors/:docId/slots", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/user/doctors/abc/slots", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/user/doctors/:docId/slots",status_code="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="unmatched",status_code="404"} 1`)
}
