package kakaopay

import "fmt"

// Config KakaoPay 클라이언트 설정
type Config struct {
	AdminKey    string // SECRET_KEY
	CID         string // 가맹점 코드
	BaseURL     string
	ApprovalURL string // 결제 성공 리다이렉트
	FailURL     string
	CancelURL   string
}

// Validate checks that every field is set.
func (c *Config) Validate() error {
	required := map[string]string{
		"admin_key":    c.AdminKey,
		"cid":          c.CID,
		"base_url":     c.BaseURL,
		"approval_url": c.ApprovalURL,
		"fail_url":     c.FailURL,
		"cancel_url":   c.CancelURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, name)
		}
	}
	return nil
}
