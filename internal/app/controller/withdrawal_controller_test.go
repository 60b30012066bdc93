package controller

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/ikkim/hwawon-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func withdrawBody(phone string, amount int64) map[string]interface{} {
	return map[string]interface{}{
		"phone":  phone,
		"amount": amount,
		"bankInfo": map[string]interface{}{
			"bankName":      "국민은행",
			"accountNumber": "123-45-67890",
			"accountHolder": "김구매",
		},
	}
}

func setupWithdrawalRoutes(env *controllerEnv) {
	withdrawalController := NewWithdrawalController(env.withdrawals)
	adminController := NewAdminController(env.withdrawals, env.policy.Location())

	env.router.GET("/withdraw", withdrawalController.GetSummary)
	env.router.POST("/withdraw", withdrawalController.RequestWithdrawal)
	env.router.GET("/admin/withdrawals", adminController.ListWithdrawals)
	env.router.GET("/admin/withdrawals/export", adminController.ExportWithdrawals)
}

func TestWithdrawalController_Summary(t *testing.T) {
	env := setupControllerTest(t)
	setupWithdrawalRoutes(env)
	env.seedPoints(t, testPhone, 13500)

	w := performJSON(env.router, http.MethodGet, "/withdraw?phone=010-1234-5678", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(13500), body["totalPoints"])
	assert.Equal(t, float64(10000), body["withdrawableAmount"])
}

func TestWithdrawalController_Summary_InvalidPhone(t *testing.T) {
	env := setupControllerTest(t)
	setupWithdrawalRoutes(env)

	w := performJSON(env.router, http.MethodGet, "/withdraw?phone=123", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidPhone, decodeBody(t, w)["error"])
}

func TestWithdrawalController_RequestWithdrawal(t *testing.T) {
	env := setupControllerTest(t)
	setupWithdrawalRoutes(env)
	env.seedPoints(t, testPhone, 12000)

	w := performJSON(env.router, http.MethodPost, "/withdraw", withdrawBody(testPhone, 10000))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, `^WD-\d{8}-[A-Z2-9]{8}$`, body["withdrawalNumber"])
	assert.Equal(t, "pending", body["status"])

	// 남은 2,000원은 최소 금액 미만
	summary := decodeBody(t, performJSON(env.router, http.MethodGet, "/withdraw?phone="+testPhone, nil))
	assert.Equal(t, float64(2000), summary["totalPoints"])
	assert.Equal(t, float64(0), summary["withdrawableAmount"])
}

func TestWithdrawalController_RequestWithdrawal_Rejected(t *testing.T) {
	env := setupControllerTest(t)
	setupWithdrawalRoutes(env)
	env.seedPoints(t, testPhone, 10000)

	tests := []struct {
		name   string
		amount int64
		code   string
	}{
		{"below minimum", 4999, apperrors.WithdrawalBelowMinimum},
		{"not a step multiple", 5001, apperrors.WithdrawalNotStepMultiple},
		{"insufficient", 15000, apperrors.WithdrawalInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(env.router, http.MethodPost, "/withdraw", withdrawBody(testPhone, tt.amount))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeBody(t, w)["error"])
		})
	}

	w := performJSON(env.router, http.MethodPost, "/withdraw", map[string]interface{}{
		"phone":  testPhone,
		"amount": 5000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidInput, decodeBody(t, w)["error"])
}

func TestAdminController_ListAndExportWithdrawals(t *testing.T) {
	env := setupControllerTest(t)
	setupWithdrawalRoutes(env)
	env.seedPoints(t, testPhone, 10000)
	env.seedPoints(t, "01087654321", 5000)

	require.Equal(t, http.StatusCreated, performJSON(env.router, http.MethodPost, "/withdraw", withdrawBody(testPhone, 10000)).Code)
	require.Equal(t, http.StatusCreated, performJSON(env.router, http.MethodPost, "/withdraw", withdrawBody("01087654321", 5000)).Code)

	w := performJSON(env.router, http.MethodGet, "/admin/withdrawals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(15000), body["totalAmount"])

	w = performJSON(env.router, http.MethodGet, "/admin/withdrawals?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])

	req := httptest.NewRequest(http.MethodGet, "/admin/withdrawals/export", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "withdrawals-"+time.Now().In(env.policy.Location()).Format("20060102"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("출금요청")
	require.NoError(t, err)
	// 헤더 + 2건 + 합계
	assert.Len(t, rows, 4)
}
