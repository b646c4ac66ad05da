package services

import (
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/flow"
	"github.com/ad/go-asset-questionnaire/internal/models"
)

const maxDescriptionLen = 200

// ParseAssetInput turns a free-form reply such as "2020 Toyota Camry, $18,000"
// into an item. The value is whatever follows the last ';' or, failing
// that, the last word if it looks like an amount. Descriptions are capped
// at maxDescriptionLen runes.
func ParseAssetInput(category, text string) models.AssetItem {
	item := parseAssetInput(category, text)
	item.Description = truncateRunes(item.Description, maxDescriptionLen)
	return item
}

func parseAssetInput(category, text string) models.AssetItem {
	item := models.AssetItem{Category: category}
	text = strings.TrimSpace(text)

	if i := strings.LastIndex(text, ";"); i >= 0 {
		item.Description = strings.TrimSpace(text[:i])
		item.Value = flow.ParseValue(text[i+1:])
		return item
	}

	fields := strings.Fields(text)
	if n := len(fields); n > 0 && looksLikeAmount(fields[n-1]) {
		desc := strings.Join(fields[:n-1], " ")
		item.Description = strings.TrimRight(desc, ", ")
		item.Value = flow.ParseValue(fields[n-1])
		return item
	}

	item.Description = text
	return item
}

func looksLikeAmount(s string) bool {
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ',' || r == '.':
		default:
			return false
		}
	}
	return digits > 0
}
