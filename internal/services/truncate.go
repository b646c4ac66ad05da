package services

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Telegram measures message text in UTF-16 code units.
const maxMessageLen = 4096

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncateUTF16 cuts s to at most limit UTF-16 units, ending with suffix when
// anything was dropped. Cuts always land on a rune boundary.
func truncateUTF16(s string, limit int, suffix string) string {
	if utf16Len(s) <= limit {
		return s
	}
	budget := limit - utf16Len(suffix)
	n := 0
	for i, r := range s {
		n += utf16.RuneLen(r)
		if n > budget {
			return s[:i] + suffix
		}
	}
	return s
}

// truncateBytes cuts s to at most limit bytes without splitting a rune.
func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
