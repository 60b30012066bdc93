package kakaopay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		AdminKey:    "secret",
		CID:         "TC0ONETIME",
		BaseURL:     server.URL,
		ApprovalURL: "http://localhost/success",
		FailURL:     "http://localhost/fail",
		CancelURL:   "http://localhost/cancel",
	}, server.Client())
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{AdminKey: "secret"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClient_Ready(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ready", r.URL.Path)
		assert.Equal(t, "SECRET_KEY secret", r.Header.Get("Authorization"))

		var req ReadyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "TC0ONETIME", req.CID)
		assert.Equal(t, "http://localhost/success", req.ApprovalURL)
		assert.Equal(t, int64(58000), req.TotalAmount)

		w.Write([]byte(`{"tid":"T1234","next_redirect_pc_url":"https://pay/redirect","created_at":"2026-01-02T10:00:00"}`))
	})

	resp, err := client.Ready(context.Background(), ReadyRequest{
		PartnerOrderID: "ORD-1",
		PartnerUserID:  "01012345678",
		ItemName:       "꽃바구니",
		Quantity:       1,
		TotalAmount:    58000,
	})
	require.NoError(t, err)
	assert.Equal(t, "T1234", resp.TID)
	assert.Equal(t, 10, resp.CreatedAt.Hour())
}

func TestClient_Approve(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/approve", r.URL.Path)
		w.Write([]byte(`{"aid":"A1","tid":"T1234","partner_order_id":"ORD-1","amount":{"total":58000},"approved_at":"2026-01-02T10:01:00"}`))
	})

	resp, err := client.Approve(context.Background(), ApproveRequest{TID: "T1234", PgToken: "pg"})
	require.NoError(t, err)
	assert.Equal(t, int64(58000), resp.Amount.Total)
	assert.Equal(t, "ORD-1", resp.PartnerOrderID)
	assert.False(t, resp.ApprovedAt.IsZero())
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, ErrPaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error_code":-780,"error_message":"approval failure"}`))
			})

			_, err := client.Approve(context.Background(), ApproveRequest{TID: "T1"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
