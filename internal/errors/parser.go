package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
// 보안상 민감한 정보는 숨기되, 사용자가 문제를 해결할 수 있는 정보 제공
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL 에러 (pgx)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		target := strings.ToLower(pgErr.ConstraintName + " " + pgErr.Message + " " + pgErr.Detail)
		switch pgErr.Code {
		case pgUniqueViolation:
			return parseDuplicateKeyError(target)
		case pgForeignKeyViolation:
			return parseForeignKeyError(target)
		case pgNotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: "필수 항목이 누락되었습니다"}
		case pgCheckViolation:
			return ErrorInfo{Code: ValidationInvalidInput, Message: "입력값이 유효하지 않습니다"}
		}
	}

	// 3. 그 외 드라이버 (sqlite 등) 문자열 기반
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower)
	}
	if strings.Contains(errLower, "not null constraint") || strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "필수 항목이 누락되었습니다"}
	}

	// 4. 네트워크/연결 에러
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	// 5. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(target string) ErrorInfo {
	switch {
	case strings.Contains(target, "members") && strings.Contains(target, "phone"):
		return ErrorInfo{Code: MemberAlreadyExists, Message: "이미 가입된 휴대폰 번호입니다"}
	case strings.Contains(target, "payment_tid"):
		return ErrorInfo{Code: PaymentAlreadyProcessed, Message: "이미 처리된 결제입니다"}
	case strings.Contains(target, "order_number"):
		return ErrorInfo{Code: ResourceConflict, Message: "주문번호가 중복되었습니다. 다시 시도해주세요"}
	case strings.Contains(target, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "이미 사용 중인 화원 식별자입니다"}
	case strings.Contains(target, "store_settlements"):
		return ErrorInfo{Code: ResourceConflict, Message: "이미 정산 내역이 존재하는 주문입니다"}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "이미 존재하는 데이터입니다",
	}
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(target string) ErrorInfo {
	if strings.Contains(target, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "연결된 데이터가 있어 삭제할 수 없습니다",
		}
	}
	if strings.Contains(target, "store") {
		return ErrorInfo{
			Code:    StoreNotFound,
			Message: "존재하지 않는 화원입니다",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "참조하는 데이터를 찾을 수 없습니다",
	}
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "store") || strings.Contains(contextLower, "화원") {
		return "화원을 찾을 수 없습니다"
	}
	if strings.Contains(contextLower, "order") || strings.Contains(contextLower, "주문") {
		return "주문을 찾을 수 없습니다"
	}
	if strings.Contains(contextLower, "product") || strings.Contains(contextLower, "상품") {
		return "상품을 찾을 수 없습니다"
	}
	if strings.Contains(contextLower, "member") || strings.Contains(contextLower, "회원") {
		return "회원을 찾을 수 없습니다"
	}

	return "요청한 데이터를 찾을 수 없습니다"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "생성") || strings.Contains(contextLower, "등록") {
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	if strings.Contains(contextLower, "withdraw") || strings.Contains(contextLower, "출금") {
		return "출금 신청 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	if strings.Contains(contextLower, "confirm") || strings.Contains(contextLower, "결제") {
		return "결제 확정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}

	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (헬퍼 함수)
// controller에서 간편하게 사용할 수 있도록
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
