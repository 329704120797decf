package annotate

// IsBurmese reports whether text contains any character from the Myanmar
// Unicode block (U+1000..U+109F).
func IsBurmese(text string) bool {
	for _, r := range text {
		if r >= 0x1000 && r <= 0x109F {
			return true
		}
	}
	return false
}

// DetectLanguage returns "my" or "en". A valid hint is trusted; otherwise
// the presence of Myanmar characters decides, defaulting to English.
func DetectLanguage(text, hint string) string {
	if hint == "en" || hint == "my" {
		return hint
	}
	if IsBurmese(text) {
		return "my"
	}
	return "en"
}
