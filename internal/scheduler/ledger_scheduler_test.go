package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/storage"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sweepCall struct {
	from, to time.Time
}

type fakeSweeper struct {
	calls []sweepCall
	count int
	err   error
}

func (f *fakeSweeper) SweepExpired(_ context.Context, from, to time.Time) (int, error) {
	f.calls = append(f.calls, sweepCall{from: from, to: to})
	return f.count, f.err
}

type fakeMonitor struct {
	overdue []model.Order
	at      time.Time
}

func (f *fakeMonitor) FlagOverdueDispatch(now time.Time) ([]model.Order, error) {
	f.at = now
	return f.overdue, nil
}

type fakeLister struct {
	withdrawals []model.Withdrawal
}

func (f *fakeLister) List(status model.WithdrawalStatus) ([]model.Withdrawal, error) {
	if status != model.WithdrawalStatusPending {
		return nil, nil
	}
	return f.withdrawals, nil
}

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memoryStore) Upload(_ context.Context, key, contentType string, body []byte) (*storage.UploadedObject, error) {
	if m.objects == nil {
		m.objects = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.objects[key] = body
	m.types[key] = contentType
	return &storage.UploadedObject{Key: key, FileURL: "https://reports.example.com/" + key}, nil
}

func newTestScheduler(ledger ExpirySweeper, orders DispatchMonitor, withdrawals WithdrawalLister, reports storage.ReportStore, clock *time.Time) *LedgerScheduler {
	loc := config.DefaultLoyalty().Location()
	s := NewLedgerScheduler(config.ScheduleConfig{}, ledger, orders, withdrawals, reports, "reports/withdrawals", loc)
	s.now = func() time.Time { return *clock }
	s.lastSweep = clock.Add(-10 * time.Minute)
	return s
}

func TestLedgerScheduler_RunExpirySweep_AdvancesWindow(t *testing.T) {
	clock := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{count: 2}
	s := newTestScheduler(sweeper, &fakeMonitor{}, &fakeLister{}, nil, &clock)

	assert.Equal(t, 2, s.RunExpirySweep(context.Background()))

	clock = clock.Add(10 * time.Minute)
	s.RunExpirySweep(context.Background())

	require.Len(t, sweeper.calls, 2)
	assert.True(t, sweeper.calls[0].from.Equal(time.Date(2026, 3, 15, 2, 50, 0, 0, time.UTC)))
	assert.True(t, sweeper.calls[0].to.Equal(sweeper.calls[1].from))
	assert.True(t, sweeper.calls[1].to.Equal(clock))
}

func TestLedgerScheduler_RunExpirySweep_RetriesWindowOnFailure(t *testing.T) {
	clock := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{err: errors.New("db down")}
	s := newTestScheduler(sweeper, &fakeMonitor{}, &fakeLister{}, nil, &clock)

	assert.Zero(t, s.RunExpirySweep(context.Background()))

	sweeper.err = nil
	clock = clock.Add(10 * time.Minute)
	s.RunExpirySweep(context.Background())

	require.Len(t, sweeper.calls, 2)
	assert.True(t, sweeper.calls[0].from.Equal(sweeper.calls[1].from))
}

func TestLedgerScheduler_RunDispatchMonitor(t *testing.T) {
	clock := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	deadline := clock.Add(-time.Minute)
	monitor := &fakeMonitor{overdue: []model.Order{
		{OrderNumber: "HW-20260315-ABCDEFGH", DispatchDeadline: &deadline},
	}}
	s := newTestScheduler(&fakeSweeper{}, monitor, &fakeLister{}, nil, &clock)

	var logs bytes.Buffer
	logger.Initialize(logger.Config{Level: "info", Format: "json", Output: &logs})
	t.Cleanup(func() {
		logger.Initialize(logger.Config{Level: "info", Format: "json", Output: io.Discard})
	})

	overdue := s.RunDispatchMonitor()
	require.Len(t, overdue, 1)
	assert.Equal(t, "HW-20260315-ABCDEFGH", overdue[0].OrderNumber)
	assert.True(t, monitor.at.Equal(clock))

	// 주문별 경고는 서비스 쪽에서만 남기고 여기서는 요약 한 줄
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[0], `"overdue":1`)
	assert.NotContains(t, logs.String(), "HW-20260315-ABCDEFGH")
}

func TestLedgerScheduler_RunWithdrawalReport(t *testing.T) {
	clock := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{withdrawals: []model.Withdrawal{
		{
			WithdrawalNumber: "WD-20260315-ABCDEFGH",
			CustomerPhone:    "01012345678",
			Amount:           10000,
			Status:           model.WithdrawalStatusPending,
			Bank:             model.BankInfo{BankName: "국민은행", AccountNumber: "123-45-67890", AccountHolder: "김구매"},
			CreatedAt:        clock.Add(-time.Hour),
		},
	}}
	store := &memoryStore{}
	s := newTestScheduler(&fakeSweeper{}, &fakeMonitor{}, lister, store, &clock)

	obj, err := s.RunWithdrawalReport(context.Background())
	require.NoError(t, err)
	require.NotNil(t, obj)
	// 09:00 KST
	assert.Equal(t, "reports/withdrawals/withdrawals-20260315-0900.xlsx", obj.Key)

	f, err := excelize.OpenReader(bytes.NewReader(store.objects[obj.Key]))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("출금요청")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestLedgerScheduler_RunWithdrawalReport_Skips(t *testing.T) {
	clock := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	// 보관소 미설정
	s := newTestScheduler(&fakeSweeper{}, &fakeMonitor{}, &fakeLister{}, nil, &clock)
	obj, err := s.RunWithdrawalReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, obj)

	// 대기 중인 출금 없음
	store := &memoryStore{}
	s = newTestScheduler(&fakeSweeper{}, &fakeMonitor{}, &fakeLister{}, store, &clock)
	obj, err = s.RunWithdrawalReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, obj)
	assert.Empty(t, store.objects)
}

func TestLedgerScheduler_StartRejectsBadSpec(t *testing.T) {
	loc := config.DefaultLoyalty().Location()
	s := NewLedgerScheduler(config.ScheduleConfig{ExpirySweepSpec: "not a spec"}, &fakeSweeper{}, &fakeMonitor{}, &fakeLister{}, nil, "", loc)
	assert.Error(t, s.Start())
}
