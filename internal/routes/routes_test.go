package routes

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/termine-api/internal/config"
	"github.com/BruksfildServices01/termine-api/internal/infra/memstore"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/observability/metrics"
	"github.com/BruksfildServices01/termine-api/internal/ratelimit"
	"github.com/BruksfildServices01/termine-api/internal/report"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

const password = "geheim123"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
	now    time.Time
	berlin *time.Location
}

func newAPI(t *testing.T, capacity int) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	store := memstore.New()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, &models.User{UserName: "user", PasswordHash: string(hash), Coupons: 1}))
	require.NoError(t, store.CreateUser(ctx, &models.User{UserName: "other", PasswordHash: string(hash), Coupons: 1}))
	require.NoError(t, store.CreateUser(ctx, &models.User{UserName: "admin", PasswordHash: string(hash), Role: models.RoleAdmin, Coupons: 10}))
	require.NoError(t, store.CreateTimeSlot(ctx, &models.TimeSlot{
		StartDateTime: time.Date(2024, 6, 1, 8, 30, 0, 0, berlin),
		LengthMin:     15,
	}, capacity))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	reg := prometheus.NewRegistry()
	api := &testAPI{
		t:      t,
		store:  store,
		now:    time.Date(2024, 5, 31, 10, 0, 0, 0, berlin),
		berlin: berlin,
	}

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config: &config.Config{
			JWTSecret:       "test-secret",
			JWTExpire:       time.Hour,
			Timezone:        "Europe/Berlin",
			ClaimTimeout:    5 * time.Minute,
			NumDisplaySlots: 150,
		},
		Store:    store,
		Logger:   logging.NewWithWriter(&bytes.Buffer{}, "error"),
		Metrics:  metrics.NewBookingMetrics(reg),
		Gatherer: reg,
		Limiter:  ratelimit.NewLoginLimiter(rdb, 2, time.Minute),
		Clock:    func() time.Time { return api.now },
	})
	api.router = r
	return api
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(userName string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"user_name": userName, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (a *testAPI) claim(token string) string {
	a.t.Helper()
	w := a.do(http.MethodGet, "/api/claim_appointment?start_date_time=2024-06-01T08:30:00", token, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return w.Body.String()
}

func bookBody(claimToken string) map[string]string {
	return map[string]string{
		"claim_token":     claimToken,
		"start_date_time": "2024-06-01T08:30:00",
		"first_name":      "Erika",
		"name":            "Mustermann",
		"phone":           "030 123456",
		"office":          "Bürgeramt Mitte",
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error_code"]
}

// ======================================================
// AUTH
// ======================================================

func TestLoginAndMe(t *testing.T) {
	api := newAPI(t, 1)
	token := api.login("user")

	w := api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_name":"user","role":"user","coupons":1}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginThrottlesFailures(t *testing.T) {
	api := newAPI(t, 1)
	wrong := map[string]string{"user_name": "user", "password": "falsch"}

	for i := 0; i < 2; i++ {
		w := api.do(http.MethodPost, "/api/auth/login", "", wrong)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, w))
	}

	w := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"user_name": "user", "password": password})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	api.login("other")
}

func TestLoginRejectsMissingFields(t *testing.T) {
	api := newAPI(t, 1)
	w := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"user_name": "user"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ======================================================
// CLAIM / BOOK / RELEASE
// ======================================================

func TestClaimAndBookFlow(t *testing.T) {
	api := newAPI(t, 2)
	token := api.login("user")

	w := api.do(http.MethodGet, "/api/next_free_slots", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"slots":[{"startDateTime":"2024-06-01T08:30:00","freeAppointments":2,"timeSlotLength":15}],"coupons":1}`,
		w.Body.String())

	claimToken := api.claim(token)
	assert.Len(t, claimToken, 32)

	w = api.do(http.MethodGet, "/api/next_free_slots", token, nil)
	assert.Contains(t, w.Body.String(), `"freeAppointments":1`)

	w = api.do(http.MethodPost, "/api/book_appointment", token, bookBody(claimToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	booked := decode[map[string]any](t, w)
	assert.Len(t, booked["secret"], 6)
	assert.Equal(t, "2024-06-01T08:30:00", booked["time_slot"])
	assert.Equal(t, float64(15), booked["slot_length_min"])

	w = api.do(http.MethodGet, "/api/me", token, nil)
	assert.Contains(t, w.Body.String(), `"coupons":0`)

	w = api.do(http.MethodGet, "/api/claim_appointment?start_date_time=2024-06-01T08:30:00", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no_coupons", errorCode(t, w))
}

func TestClaimErrors(t *testing.T) {
	api := newAPI(t, 1)
	token := api.login("user")
	api.claim(api.login("other"))

	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"exhausted", "start_date_time=2024-06-01T08:30:00", http.StatusGone, "no_free_appointment"},
		{"unknown slot", "start_date_time=2024-06-01T09:00:00", http.StatusGone, "time_slot_not_found"},
		{"in the past", "start_date_time=2024-05-30T08:30:00", http.StatusBadRequest, "start_in_past"},
		{"missing", "", http.StatusBadRequest, "missing_parameter"},
		{"garbage", "start_date_time=tomorrow", http.StatusBadRequest, "invalid_date_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodGet, "/api/claim_appointment?"+tt.query, token, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestClaimExpiresAfterTimeout(t *testing.T) {
	api := newAPI(t, 1)
	api.claim(api.login("other"))
	token := api.login("user")

	api.now = api.now.Add(5*time.Minute + time.Second)
	api.claim(token)
}

func TestBookErrors(t *testing.T) {
	api := newAPI(t, 1)
	token := api.login("user")
	claimToken := api.claim(token)

	body := bookBody("not-my-token")
	w := api.do(http.MethodPost, "/api/book_appointment", token, body)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "appointment_not_found", errorCode(t, w))

	body = bookBody(claimToken)
	delete(body, "office")
	w = api.do(http.MethodPost, "/api/book_appointment", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_parameter", errorCode(t, w))

	body = bookBody(claimToken)
	delete(body, "start_date_time")
	w = api.do(http.MethodPost, "/api/book_appointment", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/book_appointment", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing consumed by the failures
	w = api.do(http.MethodPost, "/api/book_appointment", token, bookBody(claimToken))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReleaseAlwaysSucceeds(t *testing.T) {
	api := newAPI(t, 1)
	token := api.login("user")
	claimToken := api.claim(token)

	w := api.do(http.MethodDelete, "/api/claim_token?claim_token="+claimToken, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodDelete, "/api/claim_token?claim_token="+claimToken, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodDelete, "/api/claim_token", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// the released appointment is free again
	api.claim(api.login("other"))
}

// ======================================================
// REPORTS
// ======================================================

func bookAs(api *testAPI, userName string) string {
	token := api.login(userName)
	w := api.do(http.MethodPost, "/api/book_appointment", token, bookBody(api.claim(token)))
	require.Equal(api.t, http.StatusOK, w.Code, w.Body.String())
	return token
}

func TestBookedVisibility(t *testing.T) {
	api := newAPI(t, 2)
	userToken := bookAs(api, "user")
	bookAs(api, "other")
	adminToken := api.login("admin")

	w := api.do(http.MethodGet, "/api/booked?start_date=2024-06-01&end_date=2024-06-01", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]map[string]string](t, w)
	assert.Len(t, all, 2)

	w = api.do(http.MethodGet, "/api/booked?start_date=2024-06-01&end_date=2024-06-01", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	own := decode[[]map[string]string](t, w)
	require.Len(t, own, 1)
	assert.Equal(t, "user", own[0]["booked_by"])
	assert.Equal(t, "2024-06-01T08:30:00", own[0]["start_date_time"])
	assert.Equal(t, "Mustermann", own[0]["surname"])
	assert.Equal(t, "2024-05-31T10:00:00", own[0]["booked_at"])

	w = api.do(http.MethodGet, "/api/booked?start_date=2024-06-02&end_date=2024-06-03", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(http.MethodGet, "/api/booked?start_date=2024-06-03&end_date=2024-06-01", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodGet, "/api/booked?start_date=2024-06-01", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodGet, "/api/booked?start_date=01.06.2024&end_date=2024-06-01", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListForDayCSVDefaultsToTomorrow(t *testing.T) {
	api := newAPI(t, 1)
	token := bookAs(api, "user")

	w := api.do(http.MethodGet, "/api/list_for_day.csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "termine_2024-06-01.csv")

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "start_date_time", rows[0][0])
	assert.Equal(t, "2024-06-01 08:30:00", rows[1][0])
	assert.Equal(t, "user", rows[1][6])

	w = api.do(http.MethodGet, "/api/list_for_day.csv?date_of_day=2024-05-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows, err = csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestBookingListXLSX(t *testing.T) {
	api := newAPI(t, 1)
	bookAs(api, "user")
	adminToken := api.login("admin")

	w := api.do(http.MethodGet, "/api/booking_list.xlsx?start_date=2024-06-01&end_date=2024-06-01", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentTypeXLSX, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Erika", rows[1][2])
}

// ======================================================
// ADMIN / OPS
// ======================================================

func TestAuditLogsAreAdminOnly(t *testing.T) {
	api := newAPI(t, 1)
	require.NoError(t, api.store.CreateAuditLog(context.Background(), &models.AuditLog{UserName: "user", Action: "claim_created"}))

	w := api.do(http.MethodGet, "/api/audit_logs", api.login("user"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/audit_logs?action=claim_created", api.login("admin"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), page["total"])
	assert.Equal(t, float64(1), page["page"])
	assert.Equal(t, float64(50), page["limit"])
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPI(t, 1)
	api.claim(api.login("user"))

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `termine_appointments_claims_total{result="ok"} 1`)
}
