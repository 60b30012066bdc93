package util

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone strips formatting from a Korean mobile/landline number and
// returns the domestic digits form (e.g. "+82 10-1234-5678" -> "01012345678").
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// 국가번호(82) 표기는 국내 0 접두로 변환
	if strings.HasPrefix(strings.TrimSpace(raw), "+82") || (strings.HasPrefix(digits, "82") && len(digits) >= 11) {
		digits = "0" + strings.TrimPrefix(strings.TrimPrefix(digits, "82"), "0")
	}

	if len(digits) < 9 || len(digits) > 11 || digits[0] != '0' {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// MaskPhone hides the middle digits for logs and public listings.
func MaskPhone(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
}
