package locale

// Pick returns the text matching the request language, defaulting to Thai.
func Pick(language, english, thai string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return thai
	}
	if thai != "" {
		return thai
	}
	return english
}
