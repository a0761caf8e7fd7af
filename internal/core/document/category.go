package document

import "strings"

// partKeywords drive the fallback classifier. Matching is a case-insensitive
// substring test, so "brake service" lands in Parts even though it is labour.
var partKeywords = []string{"part", "filter", "oil", "pad", "disc", "belt", "fluid", "brake"}

// ClassifyByKeyword guesses a category from a free-text description.
func ClassifyByKeyword(description string) Category {
	lower := strings.ToLower(description)
	for _, kw := range partKeywords {
		if strings.Contains(lower, kw) {
			return CategoryPart
		}
	}
	return CategoryService
}

// ParseCategory maps the explicit tags used by upstream systems.
func ParseCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "service", "services", "labour", "labor", "work":
		return CategoryService, true
	case "part", "parts", "spare", "spares", "material", "materials":
		return CategoryPart, true
	default:
		return "", false
	}
}
