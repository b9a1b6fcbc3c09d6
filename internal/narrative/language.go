package narrative

var languageNames = map[string]string{
	"en": "English",
	"te": "Telugu",
	"hi": "Hindi",
	"ta": "Tamil",
	"kn": "Kannada",
	"ml": "Malayalam",
	"mr": "Marathi",
}

// LanguageName maps a request language tag to the name used in prompts.
// Unknown tags default to English.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}
