package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

const (
	withdrawalSheet = "출금요청"

	// ContentTypeXLSX 엑셀 파일 MIME 타입
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var withdrawalHeaders = []string{"출금번호", "휴대폰", "금액", "은행", "계좌번호", "예금주", "상태", "요청일시"}

// WithdrawalReport 출금 요청 엑셀 보고서
type WithdrawalReport struct {
	GeneratedAt time.Time
	Count       int
	Total       int64
	Body        []byte
}

// Filename returns the download/upload file name for the report date.
func (r *WithdrawalReport) Filename() string {
	return fmt.Sprintf("withdrawals-%s.xlsx", r.GeneratedAt.Format("20060102-1504"))
}

// BuildWithdrawalReport renders pending withdrawals into a single-sheet workbook.
// 시각은 loc 기준으로 표기한다.
func BuildWithdrawalReport(withdrawals []model.Withdrawal, generatedAt time.Time, loc *time.Location) (*WithdrawalReport, error) {
	f := excelize.NewFile()
	defer f.Close()

	// 기본 시트 이름 변경
	if err := f.SetSheetName(f.GetSheetName(0), withdrawalSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range withdrawalHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(withdrawalSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var total int64
	for i, w := range withdrawals {
		row := []interface{}{
			w.WithdrawalNumber,
			util.MaskPhone(w.CustomerPhone),
			w.Amount,
			w.Bank.BankName,
			w.Bank.AccountNumber,
			w.Bank.AccountHolder,
			string(w.Status),
			w.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(withdrawalSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
		total += w.Amount
	}

	// 합계 행
	sumRow := len(withdrawals) + 2
	if err := f.SetCellValue(withdrawalSheet, fmt.Sprintf("B%d", sumRow), "합계"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(withdrawalSheet, fmt.Sprintf("C%d", sumRow), total); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return &WithdrawalReport{
		GeneratedAt: generatedAt.In(loc),
		Count:       len(withdrawals),
		Total:       total,
		Body:        buf.Bytes(),
	}, nil
}
