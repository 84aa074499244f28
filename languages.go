package lingo

import "strings"

// LanguageNames maps normalized language codes to human-readable names.
// Used by the CLI and by the OpenAI-compatible backend prompt.
var LanguageNames = map[string]string{
	"ar":    "Arabic",
	"bg":    "Bulgarian",
	"cs":    "Czech",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"es":    "Spanish",
	"fi":    "Finnish",
	"fr":    "French",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hu":    "Hungarian",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"pt-BR": "Portuguese (Brazil)",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sv":    "Swedish",
	"th":    "Thai",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"vi":    "Vietnamese",
	"zh":    "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
}

// NormalizeLang canonicalizes a language code: trimmed, base code
// lowercased, region uppercased, underscore separators replaced with
// hyphens ("PT_br" -> "pt-BR").
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return ""
	}
	parts := strings.SplitN(lang, "-", 2)
	base := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return base
	}
	return base + "-" + strings.ToUpper(parts[1])
}

// BaseLang extracts the base language code ("pt" from "pt-BR").
func BaseLang(lang string) string {
	return strings.SplitN(NormalizeLang(lang), "-", 2)[0]
}

// LanguageName returns the human-readable name for a language code,
// falling back to the code itself.
func LanguageName(lang string) string {
	code := NormalizeLang(lang)
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	if name, ok := LanguageNames[BaseLang(lang)]; ok {
		return name
	}
	return lang
}
