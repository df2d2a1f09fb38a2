package domain

import "strings"

// NormalizePhone converts a subscriber number to international format:
// 9-digit local numbers gain the country code, a leading "0" is replaced by
// it, and already-prefixed numbers pass through unchanged.
func NormalizePhone(raw, countryCode string) (string, error) {
	phone := strings.TrimSpace(raw)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.TrimPrefix(phone, "+")
	if phone == "" {
		return "", ErrInvalidPhone
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}

	switch {
	case len(phone) == 9:
		return countryCode + phone, nil
	case strings.HasPrefix(phone, "0"):
		return countryCode + phone[1:], nil
	default:
		return phone, nil
	}
}
