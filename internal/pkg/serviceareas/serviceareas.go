package serviceareas

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultAreas is the built-in coverage list around Mossel Bay. Custom areas
// from business settings are merged on top.
var DefaultAreas = []string{
	"Hartenbos",
	"Hartenbos Heuwels",
	"Hartenbosrif",
	"Bayview",
	"Menkenkop",
	"Voorbaai",
	"De Bakke",
	"Heiderand",
	"Aalwyndal",
	"D'Almeida",
	"Mossel Bay Central",
	"Diaz Beach",
	"Dana Bay",
	"Tergniet",
	"Reebok",
	"Fraai Uitsig",
	"Klein Brak River",
	"Great Brak River",
	"Outeniqua Strand",
	"Glentana",
}

const provinceSuffix = "Western Cape"

// Resolve merges the default areas with custom ones, trimming blanks and
// dropping case-insensitive duplicates while keeping first-seen casing.
func Resolve(customAreas []string) []string {
	merged := append(append([]string{}, DefaultAreas...), customAreas...)
	trimmed := lo.FilterMap(merged, func(area string, _ int) (string, bool) {
		value := strings.TrimSpace(area)
		return value, value != ""
	})
	return lo.UniqBy(trimmed, strings.ToLower)
}

// Contains reports whether area is in the resolved list, case-insensitively.
func Contains(areas []string, area string) bool {
	needle := strings.TrimSpace(area)
	return lo.ContainsBy(areas, func(a string) bool {
		return strings.EqualFold(a, needle)
	})
}

// ComposeAddress builds the canonical single-string service address.
func ComposeAddress(streetAddress, area string) string {
	return strings.TrimSpace(streetAddress) + ", " + area + ", " + provinceSuffix
}

// ParseAddress splits a composed address back into street and area. If the
// area part is not in the allowed list the whole value is returned as street
// with an empty area, mirroring how unknown legacy addresses are handled.
func ParseAddress(value string, allowedAreas []string) (streetAddress, area string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}

	parts := make([]string, 0, 4)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) < 2 {
		return value, ""
	}

	if strings.EqualFold(parts[len(parts)-1], provinceSuffix) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return value, ""
	}

	candidate := parts[len(parts)-1]
	areas := Resolve(allowedAreas)
	for _, allowed := range areas {
		if strings.EqualFold(allowed, candidate) {
			return strings.Join(parts[:len(parts)-1], ", "), allowed
		}
	}

	return value, ""
}
