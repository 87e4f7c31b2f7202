// internal/interfaces/http/server_test.go
package http

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/testutil"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t       *testing.T
	db      *gorm.DB
	handler nethttp.Handler
}

func newHarness(t *testing.T) *harness {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	server := NewServer(testutil.Config(), db, nil, testutil.Logger())
	return &harness{t: t, db: db, handler: server.Handler()}
}

func (h *harness) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (h *harness) login(role user.Role, email string) string {
	h.t.Helper()

	testutil.CreateUser(h.t, h.db, role, email, "secret123")
	rec, env := h.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(h.t, nethttp.StatusOK, rec.Code, rec.Body.String())

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(h.t, auth.AccessToken)
	return auth.AccessToken
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(nethttp.MethodGet, "/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec, _ = h.do(nethttp.MethodGet, "/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	h := newHarness(t)

	t.Run("missing token", func(t *testing.T) {
		rec, env := h.do(nethttp.MethodGet, "/api/v1/products", "", nil)
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, env := h.do(nethttp.MethodGet, "/api/v1/products", "not-a-jwt", nil)
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", env.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		testutil.CreateUser(t, h.db, user.RoleCashier, "wrong@pharmacy.test", "secret123")
		rec, env := h.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "wrong@pharmacy.test", "password": "nope"})
		assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, env := h.do(nethttp.MethodPost, "/api/v1/auth/login", "", "not an object")
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request data", env.Message)
	})

	t.Run("me", func(t *testing.T) {
		token := h.login(user.RolePharmacist, "me@pharmacy.test")
		rec, env := h.do(nethttp.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, nethttp.StatusOK, rec.Code)

		var me user.User
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, "me@pharmacy.test", me.Email)
		assert.Equal(t, user.RolePharmacist, me.Role)
		assert.NotContains(t, string(env.Data), "secret123")
	})
}

func TestPermissions(t *testing.T) {
	h := newHarness(t)
	cashier := h.login(user.RoleCashier, "cashier@pharmacy.test")
	pharmacist := h.login(user.RolePharmacist, "pharmacist@pharmacy.test")

	rec, env := h.do(nethttp.MethodPost, "/api/v1/products", cashier, gin.H{"name": "Aspirin"})
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)
	assert.False(t, env.Success)

	rec, _ = h.do(nethttp.MethodGet, "/api/v1/reports/dashboard", cashier, nil)
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)

	rec, _ = h.do(nethttp.MethodGet, "/api/v1/users", pharmacist, nil)
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)

	rec, _ = h.do(nethttp.MethodGet, "/api/v1/products", cashier, nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	rec, _ = h.do(nethttp.MethodGet, "/api/v1/reports/dashboard", pharmacist, nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestSaleFlow(t *testing.T) {
	h := newHarness(t)
	token := h.login(user.RoleCashier, "till@pharmacy.test")

	sup := testutil.CreateSupplier(t, h.db, "Acme")
	p := testutil.CreateProduct(t, h.db, sup.ID, "Paracetamol", "Analgesic", "6.00", "10.00", 5)
	batch := testutil.CreateBatch(t, h.db, p.ID, "P-1", 5, time.Now().UTC().AddDate(1, 0, 0))

	body := gin.H{
		"items": []gin.H{
			{"product_id": p.ID, "batch_id": batch.ID, "quantity": 3, "price": "10.00"},
		},
		"total_amount":   "30.00",
		"payment_method": "CASH",
	}

	rec, env := h.do(nethttp.MethodPost, "/api/v1/sales", token, body)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Sale completed successfully", env.Message)
	assert.Equal(t, 2, testutil.BatchQuantity(t, h.db, batch.ID))

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, env = h.do(nethttp.MethodGet, "/api/v1/sales/"+created.ID, token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "Paracetamol")

	t.Run("oversell is rejected", func(t *testing.T) {
		body["total_amount"] = "30.00"
		rec, env := h.do(nethttp.MethodPost, "/api/v1/sales", token, body)
		assert.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, env.Message, "Insufficient stock")
		assert.Equal(t, 2, testutil.BatchQuantity(t, h.db, batch.ID))
	})

	t.Run("total mismatch is rejected", func(t *testing.T) {
		bad := gin.H{
			"items":          []gin.H{{"batch_id": batch.ID, "quantity": 1, "price": "10.00"}},
			"total_amount":   "9.00",
			"payment_method": "CASH",
		}
		rec, _ := h.do(nethttp.MethodPost, "/api/v1/sales", token, bad)
		assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	})

	t.Run("unknown sale", func(t *testing.T) {
		rec, env := h.do(nethttp.MethodGet, "/api/v1/sales/missing", token, nil)
		assert.Equal(t, nethttp.StatusNotFound, rec.Code)
		assert.Equal(t, "Sale not found", env.Message)
	})
}

func TestReportExport(t *testing.T) {
	h := newHarness(t)
	token := h.login(user.RoleAdmin, "admin@pharmacy.test")

	rec, _ := h.do(nethttp.MethodGet, "/api/v1/reports/dashboard/export?format=xlsx", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=dashboard-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec, env := h.do(nethttp.MethodGet, "/api/v1/reports/dashboard/export?format=csv", token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "Format must be xlsx or pdf", env.Message)

	rec, env = h.do(nethttp.MethodGet, "/api/v1/reports/payroll/export", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "Unknown report", env.Message)
}
