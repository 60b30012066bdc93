package util

import "strings"

// 시·도 표기 변형 -> 정식 명칭
// 약칭, 구 명칭(강원도, 전라북도 등)과 현행 특별자치도 명칭을 모두 수용한다.
var sidoAliases = map[string]string{
	"서울":      "서울특별시",
	"서울시":     "서울특별시",
	"서울특별시":   "서울특별시",
	"부산":      "부산광역시",
	"부산시":     "부산광역시",
	"부산광역시":   "부산광역시",
	"대구":      "대구광역시",
	"대구시":     "대구광역시",
	"대구광역시":   "대구광역시",
	"인천":      "인천광역시",
	"인천시":     "인천광역시",
	"인천광역시":   "인천광역시",
	"광주":      "광주광역시",
	"광주시":     "광주광역시",
	"광주광역시":   "광주광역시",
	"대전":      "대전광역시",
	"대전시":     "대전광역시",
	"대전광역시":   "대전광역시",
	"울산":      "울산광역시",
	"울산시":     "울산광역시",
	"울산광역시":   "울산광역시",
	"세종":      "세종특별자치시",
	"세종시":     "세종특별자치시",
	"세종특별자치시": "세종특별자치시",
	"경기":      "경기도",
	"경기도":     "경기도",
	"강원":      "강원특별자치도",
	"강원도":     "강원특별자치도",
	"강원특별자치도": "강원특별자치도",
	"충북":      "충청북도",
	"충청북도":    "충청북도",
	"충남":      "충청남도",
	"충청남도":    "충청남도",
	"전북":      "전북특별자치도",
	"전라북도":    "전북특별자치도",
	"전북특별자치도": "전북특별자치도",
	"전남":      "전라남도",
	"전라남도":    "전라남도",
	"경북":      "경상북도",
	"경상북도":    "경상북도",
	"경남":      "경상남도",
	"경상남도":    "경상남도",
	"제주":      "제주특별자치도",
	"제주도":     "제주특별자치도",
	"제주특별자치도": "제주특별자치도",
}

// AllAreas marks a delivery area that covers every 시·군·구 of its 시·도.
const AllAreas = "전체"

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// NormalizeSido returns the canonical 시·도 name. Unknown names are returned
// with whitespace removed so that comparisons stay deterministic.
func NormalizeSido(raw string) string {
	key := stripSpaces(raw)
	if canonical, ok := sidoAliases[key]; ok {
		return canonical
	}
	return key
}

// NormalizeSigungu canonicalizes a 시·군·구 name.
// "수원시 영통구" and "수원시영통구" compare equal; an empty value or "전체"
// is returned as AllAreas.
func NormalizeSigungu(raw string) string {
	key := stripSpaces(raw)
	if key == "" || key == AllAreas {
		return AllAreas
	}
	return key
}

// SigunguMatches reports whether a store's declared 시·군·구 covers the
// requested one. A city-level area ("수원시") covers its districts
// ("수원시영통구"), and AllAreas covers everything.
func SigunguMatches(declared, requested string) bool {
	d := NormalizeSigungu(declared)
	r := NormalizeSigungu(requested)
	if d == AllAreas {
		return true
	}
	if d == r {
		return true
	}
	return strings.HasSuffix(d, "시") && strings.HasPrefix(r, d)
}
