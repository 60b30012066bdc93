package scheduler

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/internal/report"
	"github.com/ikkim/hwawon-backend/internal/storage"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

type ExpirySweeper interface {
	SweepExpired(ctx context.Context, from, to time.Time) (int, error)
}

type DispatchMonitor interface {
	FlagOverdueDispatch(now time.Time) ([]model.Order, error)
}

type WithdrawalLister interface {
	List(status model.WithdrawalStatus) ([]model.Withdrawal, error)
}

// LedgerScheduler 포인트 만료 알림, 본사 배정 지연 감시, 출금 보고서 업로드
type LedgerScheduler struct {
	cron         *cron.Cron
	schedule     config.ScheduleConfig
	ledger       ExpirySweeper
	orders       DispatchMonitor
	withdrawals  WithdrawalLister
	reports      storage.ReportStore // nil 이면 보고서 업로드 생략
	reportPrefix string
	loc          *time.Location
	now          func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

func NewLedgerScheduler(
	schedule config.ScheduleConfig,
	ledger ExpirySweeper,
	orders DispatchMonitor,
	withdrawals WithdrawalLister,
	reports storage.ReportStore,
	reportPrefix string,
	loc *time.Location,
) *LedgerScheduler {
	s := &LedgerScheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		schedule:     schedule,
		ledger:       ledger,
		orders:       orders,
		withdrawals:  withdrawals,
		reports:      reports,
		reportPrefix: reportPrefix,
		loc:          loc,
		now:          time.Now,
	}
	s.lastSweep = s.now().UTC()
	return s
}

// Start 스케줄러 시작
func (s *LedgerScheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"expiry sweep", s.schedule.ExpirySweepSpec, func() { s.RunExpirySweep(context.Background()) }},
		{"dispatch monitor", s.schedule.DispatchMonitorSpec, func() { s.RunDispatchMonitor() }},
		{"withdrawal report", s.schedule.ReportSpec, func() { s.RunWithdrawalReport(context.Background()) }},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			logger.Error("Failed to add cron job", err, map[string]interface{}{
				"job":  job.name,
				"spec": job.spec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Ledger scheduler started", map[string]interface{}{
		"expiry_sweep":      s.schedule.ExpirySweepSpec,
		"dispatch_monitor":  s.schedule.DispatchMonitorSpec,
		"withdrawal_report": s.schedule.ReportSpec,
	})

	return nil
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다.
func (s *LedgerScheduler) Stop() {
	logger.Info("Stopping ledger scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Ledger scheduler stopped", nil)
}

// RunExpirySweep 직전 실행 이후 만료된 포인트를 알린다
func (s *LedgerScheduler) RunExpirySweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	count, err := s.ledger.SweepExpired(ctx, s.lastSweep, now)
	if err != nil {
		logger.Error("Expiry sweep failed", err, map[string]interface{}{
			"from": s.lastSweep,
			"to":   now,
		})
		// 다음 실행에서 같은 구간을 다시 본다
		return 0
	}
	s.lastSweep = now

	if count > 0 {
		logger.Info("Expired ledger entries announced", map[string]interface{}{
			"count": count,
		})
	}
	return count
}

// RunDispatchMonitor 배정 기한을 넘긴 본사 배정 주문을 찾는다
func (s *LedgerScheduler) RunDispatchMonitor() []model.Order {
	overdue, err := s.orders.FlagOverdueDispatch(s.now().UTC())
	if err != nil {
		logger.Error("Dispatch monitor failed", err)
		return nil
	}

	// 주문별 경고는 FlagOverdueDispatch 가 남긴다
	if len(overdue) > 0 {
		logger.Info("Dispatch monitor completed", map[string]interface{}{
			"overdue": len(overdue),
		})
	}
	return overdue
}

// RunWithdrawalReport 대기 중인 출금 요청을 엑셀로 만들어 업로드한다
func (s *LedgerScheduler) RunWithdrawalReport(ctx context.Context) (*storage.UploadedObject, error) {
	if s.reports == nil {
		logger.Debug("Report storage not configured, skipping withdrawal report", nil)
		return nil, nil
	}

	pending, err := s.withdrawals.List(model.WithdrawalStatusPending)
	if err != nil {
		logger.Error("Failed to list pending withdrawals", err)
		return nil, err
	}
	if len(pending) == 0 {
		logger.Info("No pending withdrawals, report skipped", nil)
		return nil, nil
	}

	rep, err := report.BuildWithdrawalReport(pending, s.now(), s.loc)
	if err != nil {
		logger.Error("Failed to build withdrawal report", err)
		return nil, err
	}

	key := path.Join(s.reportPrefix, rep.Filename())
	obj, err := s.reports.Upload(ctx, key, report.ContentTypeXLSX, rep.Body)
	if err != nil {
		logger.Error("Failed to upload withdrawal report", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}

	logger.Info("Withdrawal report uploaded", map[string]interface{}{
		"key":   obj.Key,
		"count": rep.Count,
		"total": rep.Total,
	})
	return obj, nil
}
