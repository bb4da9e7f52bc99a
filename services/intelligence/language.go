package ai

import (
	"strings"
	"unicode"
)

const (
	LangEnglish = "en"
	LangHebrew  = "he"
	LangArabic  = "ar"
)

// DetectLanguage picks a reply language from the script of text. It only tells
// script families apart: any Hebrew letter selects Hebrew, any Arabic letter selects
// Arabic (whichever script has more letters wins), everything else is English.
func DetectLanguage(text string) string {
	var hebrew, arabic int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hebrew, r):
			hebrew++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		}
	}
	switch {
	case hebrew == 0 && arabic == 0:
		return LangEnglish
	case hebrew >= arabic:
		return LangHebrew
	default:
		return LangArabic
	}
}

// NormalizeLanguage maps tags like "he-IL" or "AR" onto a supported language,
// defaulting to English.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	switch lang {
	case LangHebrew, "iw":
		return LangHebrew
	case LangArabic:
		return LangArabic
	default:
		return LangEnglish
	}
}

func languageName(lang string) string {
	switch lang {
	case LangHebrew:
		return "Hebrew"
	case LangArabic:
		return "Arabic"
	default:
		return "English"
	}
}
