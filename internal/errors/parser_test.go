package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError_RecordNotFound(t *testing.T) {
	info := ParseError(fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "order lookup")
	assert.Equal(t, ResourceNotFound, info.Code)
	assert.Equal(t, "주문을 찾을 수 없습니다", info.Message)
}

func TestParseError_PgUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantCode   string
	}{
		{"member phone", "idx_members_phone", MemberAlreadyExists},
		{"payment tid", "idx_orders_payment_tid", PaymentAlreadyProcessed},
		{"other", "idx_something", ResourceAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})
			assert.Equal(t, tt.wantCode, ParseError(err, "create").Code)
		})
	}
}

func TestParseError_PgForeignKeyViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "fk_orders_receiver_store"}
	assert.Equal(t, StoreNotFound, ParseError(err, "create order").Code)
}

func TestParseError_SqliteUniqueFallback(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: members.phone")
	assert.Equal(t, MemberAlreadyExists, ParseError(err, "member signup").Code)
}

func TestParseError_Default(t *testing.T) {
	info := ParseError(errors.New("boom"), "withdraw")
	assert.Equal(t, InternalServerError, info.Code)
	assert.Contains(t, info.Message, "출금")

	assert.Equal(t, InternalServerError, ParseError(nil, "").Code)
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	BadRequest(c, WithdrawalBelowMinimum, "최소 출금 금액은 5,000원입니다")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"WITHDRAWAL_BELOW_MINIMUM","message":"최소 출금 금액은 5,000원입니다"}`, w.Body.String())
}
