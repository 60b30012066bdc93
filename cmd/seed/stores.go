package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ikkim/hwawon-backend/internal/app/model"
	"github.com/ikkim/hwawon-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// 화원 목록 시트 컬럼
const (
	colBusinessName = iota // 상호명
	colOwnerName           // 대표자
	colPhone               // 연락처
	colSido                // 시·도
	colSigungu             // 시·군·구
	colAddress             // 주소
	colDeliveryAreas       // 배송 지역 ("서울 강남구;경기 전체")
	colMinOrderAmount      // 최소 주문 금액
	colFirstPrice          // 이후 컬럼은 헤더가 상품 유형인 지역 단가
)

var (
	numOnlyReg     = regexp.MustCompile(`^[0-9]+$`)
	specialOnlyReg = regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
)

type importResult struct {
	Stores    []model.Store
	TotalRows int
	Skipped   int
}

func readStoresFromXLSX(filePath string) (*importResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트 이름 가져오기
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return parseStoreRows(rows)
}

// parseStoreRows turns sheet rows (header first) into stores with their
// delivery areas and area pricing. Invalid or duplicate rows are skipped.
func parseStoreRows(rows [][]string) (*importResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	type priceColumn struct {
		idx         int
		productType string
	}
	var priceColumns []priceColumn
	for i := colFirstPrice; i < len(rows[0]); i++ {
		productType := strings.ToLower(strings.TrimSpace(rows[0][i]))
		if productType != "" {
			priceColumns = append(priceColumns, priceColumn{idx: i, productType: productType})
		}
	}

	result := &importResult{TotalRows: len(rows) - 1}
	seen := make(map[string]bool) // 중복 제거용

	for _, row := range rows[1:] {
		if len(row) <= colDeliveryAreas {
			result.Skipped++
			continue
		}

		name := strings.TrimSpace(row[colBusinessName])
		sido := util.NormalizeSido(row[colSido])
		sigungu := strings.TrimSpace(row[colSigungu])

		// 1. 기본 필수 항목 검사
		if sido == "" || sigungu == "" || !isValidStoreName(name) {
			result.Skipped++
			continue
		}

		minOrder, err := parseAmount(cell(row, colMinOrderAmount))
		if err != nil {
			result.Skipped++
			continue
		}

		// 2. 배송 지역 (비어 있으면 소재지 시·군·구)
		areas := parseDeliveryAreas(row[colDeliveryAreas], minOrder)
		if len(areas) == 0 {
			areas = []model.StoreDeliveryArea{{Sido: sido, Sigungu: sigungu, MinOrderAmount: minOrder}}
		}

		// 3. 지역 단가
		var pricing []model.StoreAreaPricing
		for _, col := range priceColumns {
			price, err := parseAmount(cell(row, col.idx))
			if err != nil || price <= 0 {
				continue
			}
			pricing = append(pricing, model.StoreAreaPricing{ProductType: col.productType, PriceBasic: price})
		}

		key := fmt.Sprintf("%s|%s|%s", name, sido, util.NormalizeSigungu(sigungu))
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		result.Stores = append(result.Stores, model.Store{
			BusinessName:  name,
			OwnerName:     strings.TrimSpace(row[colOwnerName]),
			PhoneNumber:   strings.TrimSpace(row[colPhone]),
			Sido:          sido,
			Sigungu:       sigungu,
			Address:       strings.TrimSpace(row[colAddress]),
			IsOpen:        true,
			DeliveryAreas: areas,
			AreaPricing:   pricing,
		})
	}

	return result, nil
}

// parseDeliveryAreas reads "시도 시군구" pairs separated by ';'.
// A pair without 시·군·구 covers the whole 시·도.
func parseDeliveryAreas(raw string, minOrder int64) []model.StoreDeliveryArea {
	var areas []model.StoreDeliveryArea
	for _, part := range strings.Split(raw, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		area := model.StoreDeliveryArea{
			Sido:           util.NormalizeSido(fields[0]),
			Sigungu:        util.AllAreas,
			MinOrderAmount: minOrder,
		}
		if len(fields) > 1 {
			area.Sigungu = strings.Join(fields[1:], " ")
		}
		areas = append(areas, area)
	}
	return areas
}

func parseAmount(raw string) (int64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// isValidStoreName은 상호명이 유효한지 검증합니다
func isValidStoreName(name string) bool {
	// 2글자 미만 제외
	if len([]rune(name)) < 2 {
		return false
	}

	// 숫자만 있는 경우 제외
	if numOnlyReg.MatchString(name) {
		return false
	}

	// 특수문자만 있는 경우 제외
	return !specialOnlyReg.MatchString(name)
}
