package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationInvalidPhone  = "VALIDATION_INVALID_PHONE"  // 잘못된 휴대폰 번호
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"  // 범위 초과
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목
	ValidationAddress       = "VALIDATION_ADDRESS"        // 배송지 누락

	// ==================== 인증 (AUTH_) ====================
	AuthRequired         = "AUTH_REQUIRED"          // 인증 필요
	AuthAdminKeyInvalid  = "AUTH_ADMIN_KEY_INVALID" // 운영 키 불일치
	AuthSignatureInvalid = "AUTH_SIGNATURE_INVALID" // 결제 통지 서명 불일치

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 포인트 원장 (LEDGER_) ====================
	LedgerEntryNotFound = "LEDGER_ENTRY_NOT_FOUND" // 적립 내역 없음
	LedgerAlreadyUsed   = "LEDGER_ALREADY_USED"    // 이미 사용됨
	LedgerExpired       = "LEDGER_EXPIRED"         // 만료됨

	// ==================== 주문 금액 (PRICING_) ====================
	PricingNegativeTotal          = "PRICING_NEGATIVE_TOTAL"           // 결제 금액 음수
	PricingDiscountExceedsBalance = "PRICING_DISCOUNT_EXCEEDS_BALANCE" // 보유 포인트 부족
	PricingInvalidQuantity        = "PRICING_INVALID_QUANTITY"         // 잘못된 수량
	PricingInvalidFee             = "PRICING_INVALID_FEE"              // 잘못된 추가 요금
	PricingMinOrderAmountNotMet   = "PRICING_MIN_ORDER_AMOUNT_NOT_MET" // 화원 최소 주문 금액 미달

	// ==================== 주문 (ORDER_) ====================
	OrderNotFound       = "ORDER_NOT_FOUND"       // 주문 없음
	OrderNotPending     = "ORDER_NOT_PENDING"     // 결제 대기 상태 아님
	OrderProductInvalid = "ORDER_PRODUCT_INVALID" // 판매 중이 아닌 상품

	// ==================== 결제 (PAYMENT_) ====================
	PaymentAlreadyProcessed = "PAYMENT_ALREADY_PROCESSED" // 이미 처리된 결제
	PaymentProviderFailed   = "PAYMENT_PROVIDER_FAILED"   // 결제사 오류
	PaymentNotConfigured    = "PAYMENT_NOT_CONFIGURED"    // 결제 설정 없음

	// ==================== 출금 (WITHDRAWAL_) ====================
	WithdrawalBelowMinimum      = "WITHDRAWAL_BELOW_MINIMUM"      // 최소 출금액 미만
	WithdrawalNotStepMultiple   = "WITHDRAWAL_NOT_STEP_MULTIPLE"  // 출금 단위 아님
	WithdrawalInsufficientFunds = "WITHDRAWAL_INSUFFICIENT_FUNDS" // 출금 가능 금액 초과
	WithdrawalInvalidBankInfo   = "WITHDRAWAL_INVALID_BANK_INFO"  // 계좌 정보 누락

	// ==================== 추천 (REFERRAL_) ====================
	ReferralSelf = "REFERRAL_SELF" // 본인 추천 불가

	// ==================== 화원 (STORE_) ====================
	StoreNotFound    = "STORE_NOT_FOUND"    // 화원 없음
	StoreNoEligible  = "STORE_NO_ELIGIBLE"  // 배송 가능한 화원 없음
	StoreNotEligible = "STORE_NOT_ELIGIBLE" // 해당 지역 배송 불가 화원
	StoreClosed      = "STORE_CLOSED"       // 영업 중이 아닌 화원

	// ==================== 회원 (MEMBER_) ====================
	MemberAlreadyExists = "MEMBER_ALREADY_EXISTS" // 이미 가입한 번호

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)
