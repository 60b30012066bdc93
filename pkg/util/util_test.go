package util

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dashed", "010-1234-5678", "01012345678"},
		{"plain", "01012345678", "01012345678"},
		{"international", "+82 10-1234-5678", "01012345678"},
		{"international with zero", "+82 010 1200 5678", "01012005678"},
		{"country code digits", "821098765432", "01098765432"},
		{"seoul landline", "02-123-4567", "021234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	for _, input := range []string{"", "1234", "abc-defg", "1012345678901"} {
		_, err := NormalizePhone(input)
		assert.ErrorIs(t, err, ErrInvalidPhone, input)
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "010****5678", MaskPhone("01012345678"))
	assert.Equal(t, "123", MaskPhone("123"))
}

func TestNormalizeSido_Variants(t *testing.T) {
	assert.Equal(t, "서울특별시", NormalizeSido("서울"))
	assert.Equal(t, "서울특별시", NormalizeSido("서울시"))
	assert.Equal(t, "서울특별시", NormalizeSido(" 서울특별시 "))
	assert.Equal(t, "경기도", NormalizeSido("경기"))
	assert.Equal(t, "강원특별자치도", NormalizeSido("강원도"))
	assert.Equal(t, "전북특별자치도", NormalizeSido("전라북도"))
	assert.Equal(t, "전북특별자치도", NormalizeSido("전북"))
	assert.Equal(t, "제주특별자치도", NormalizeSido("제주도"))
	assert.Equal(t, "세종특별자치시", NormalizeSido("세종"))
	assert.Equal(t, "어딘가", NormalizeSido("어 딘가"))
}

func TestNormalizeSigungu(t *testing.T) {
	assert.Equal(t, "수원시영통구", NormalizeSigungu("수원시 영통구"))
	assert.Equal(t, "강남구", NormalizeSigungu("강남구 "))
	assert.Equal(t, AllAreas, NormalizeSigungu(""))
	assert.Equal(t, AllAreas, NormalizeSigungu("전체"))
}

func TestSigunguMatches(t *testing.T) {
	assert.True(t, SigunguMatches("강남구", "강남구"))
	assert.True(t, SigunguMatches("수원시 영통구", "수원시영통구"))
	assert.True(t, SigunguMatches("수원시", "수원시 영통구"))
	assert.True(t, SigunguMatches("전체", "서초구"))
	assert.True(t, SigunguMatches("", "서초구"))
	assert.False(t, SigunguMatches("강남구", "서초구"))
	assert.False(t, SigunguMatches("수원시영통구", "수원시"))
}

func TestGenerateReference(t *testing.T) {
	at := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)
	ref := GenerateReference("CP", at)

	assert.Regexp(t, regexp.MustCompile(`^CP-20260115-[A-Z2-9]{8}$`), ref)
	assert.NotEqual(t, ref, GenerateReference("CP", at))
}

func TestGenerateRandomNumber_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := GenerateRandomNumber(3, 5)
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 5)
	}
}
