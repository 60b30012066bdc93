package service

import (
	"errors"

	"github.com/ikkim/hwawon-backend/pkg/logger"
)

var (
	ErrNegativeTotal          = errors.New("order total would be negative")
	ErrDiscountExceedsBalance = errors.New("discount exceeds available balance")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidAdditionalFee   = errors.New("additional fee must not be negative")
	ErrInvalidPointsRequest   = errors.New("requested points must not be negative")
	ErrInvalidUnitPrice       = errors.New("unit price must not be negative")
)

// PricingInput 가격 계산 입력
type PricingInput struct {
	UnitPrice       int64
	Quantity        int
	AdditionalFee   int64
	PointsRequested int64
}

// PricedOrder 가격 계산 결과
type PricedOrder struct {
	Subtotal      int64 `json:"subtotal"`
	AdditionalFee int64 `json:"additionalFee"`
	Discount      int64 `json:"discount"`
	Total         int64 `json:"total"`
}

// PriceOrder computes the payable amount for an order.
// discount = min(requested, available, subtotal + fee) when points are requested.
func PriceOrder(in PricingInput, available int64) (*PricedOrder, error) {
	switch {
	case in.Quantity <= 0:
		return nil, ErrInvalidQuantity
	case in.UnitPrice < 0:
		return nil, ErrInvalidUnitPrice
	case in.AdditionalFee < 0:
		return nil, ErrInvalidAdditionalFee
	case in.PointsRequested < 0:
		return nil, ErrInvalidPointsRequest
	}

	subtotal := in.UnitPrice * int64(in.Quantity)
	gross := subtotal + in.AdditionalFee

	var discount int64
	if in.PointsRequested > 0 {
		discount = min(in.PointsRequested, max(available, 0), gross)
	}

	total := gross - discount
	if total < 0 {
		logger.Error("Priced order total is negative", ErrNegativeTotal, map[string]interface{}{
			"subtotal": subtotal,
			"fee":      in.AdditionalFee,
			"discount": discount,
		})
		return nil, ErrNegativeTotal
	}

	return &PricedOrder{
		Subtotal:      subtotal,
		AdditionalFee: in.AdditionalFee,
		Discount:      discount,
		Total:         total,
	}, nil
}
