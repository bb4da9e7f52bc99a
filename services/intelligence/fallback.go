package ai

import (
	"fmt"
	"regexp"
	"strings"

	"chatbook/models"
)

// lexicon holds the keyword buckets of one language in priority order.
type lexicon struct {
	status *regexp.Regexp
	cancel *regexp.Regexp
	book   *regexp.Regexp
	greet  *regexp.Regexp
}

// RE2's \b is ASCII-only, so the Hebrew and Arabic buckets match substrings.
var lexicons = map[string]lexicon{
	LangEnglish: {
		status: regexp.MustCompile(`\b(status|confirm(ed)?|approved?|pending|update)\b`),
		cancel: regexp.MustCompile(`\b(cancel|can'?t make it|cannot make it|reschedule)\b`),
		book:   regexp.MustCompile(`\b(book(ing)?|appointment|schedule|hair(cut)?|nails?|massage|available|availability|slots?|times?|openings?)\b`),
		greet:  regexp.MustCompile(`\b(hi|hello|hey|thanks|thank you)\b`),
	},
	LangHebrew: {
		status: regexp.MustCompile(`סטטוס|אישור|מאושר|ממתין|עדכון`),
		cancel: regexp.MustCompile(`ביטול|לבטל|בטל|לא אוכל להגיע|לדחות`),
		book:   regexp.MustCompile(`תור|לקבוע|להזמין|פנוי|זמין|שעה|תספורת|ציפורניים|עיסוי`),
		greet:  regexp.MustCompile(`שלום|היי|תודה`),
	},
	LangArabic: {
		status: regexp.MustCompile(`حالة|تأكيد|مؤكد|معلق|تحديث`),
		cancel: regexp.MustCompile(`إلغاء|الغاء|ألغي|الغي|لا أستطيع الحضور|تأجيل`),
		book:   regexp.MustCompile(`موعد|حجز|احجز|متاح|وقت|قص|أظافر|مساج`),
		greet:  regexp.MustCompile(`مرحبا|أهلا|اهلا|شكرا|السلام عليكم`),
	},
}

// Fallback resolves text with the keyword lexicon of lang. Buckets are checked in the
// order pending status (only with a pending booking), cancel, booking, greeting.
func Fallback(tenant *models.Tenant, text string, pending *models.PendingBooking, lang string) models.Resolution {
	lang = NormalizeLanguage(lang)
	lex := lexicons[lang]
	lower := strings.ToLower(text)

	action := models.ActionUnknown
	switch {
	case pending != nil && lex.status.MatchString(lower):
		action = models.ActionPendingStatus
	case lex.cancel.MatchString(lower):
		action = models.ActionCancelBooking
	case lex.book.MatchString(lower):
		action = models.ActionShowAvailability
	case lex.greet.MatchString(lower):
		action = models.ActionAnswer
	}

	res := models.Resolution{
		Action:       action,
		ResponseText: fallbackResponse(action, lang, tenant, pending),
		Language:     lang,
		Source:       models.SourceFallback,
	}
	if svc := tenant.ServiceByText(text); svc != nil {
		res.ServiceHint = svc.ID
	}
	return res
}

var fallbackReplies = map[string]map[models.Action]string{
	LangEnglish: {
		models.ActionPendingStatus:    "We're still waiting for the owner to approve your booking for %s. We'll send an update soon.",
		models.ActionCancelBooking:    "No problem. Tap 'Reject' to cancel the pending booking, or tell us a better time.",
		models.ActionShowAvailability: "Sure! Here are the next available slots.",
		models.ActionAnswer:           "Hi! I'm the assistant for %s. I can help you book or answer questions.",
	},
	LangHebrew: {
		models.ActionPendingStatus:    "אנחנו עדיין ממתינים לאישור התור שלך ל-%s. נעדכן בקרוב.",
		models.ActionCancelBooking:    "אין בעיה. לחצו על 'Reject' כדי לבטל את התור הממתין, או כתבו לנו זמן אחר.",
		models.ActionShowAvailability: "בשמחה! הנה התורים הפנויים הקרובים.",
		models.ActionAnswer:           "שלום! אני העוזר של %s. אשמח לעזור לקבוע תור או לענות על שאלות.",
	},
	LangArabic: {
		models.ActionPendingStatus:    "ما زلنا ننتظر موافقة المالك على حجزك في %s. سنرسل لك تحديثاً قريباً.",
		models.ActionCancelBooking:    "لا مشكلة. اضغط 'Reject' لإلغاء الحجز المعلق، أو أخبرنا بوقت أنسب.",
		models.ActionShowAvailability: "بكل سرور! إليك أقرب المواعيد المتاحة.",
		models.ActionAnswer:           "مرحباً! أنا مساعد %s. يمكنني مساعدتك في الحجز أو الإجابة عن أسئلتك.",
	},
}

func fallbackResponse(action models.Action, lang string, tenant *models.Tenant, pending *models.PendingBooking) string {
	tmpl, ok := fallbackReplies[lang][action]
	if !ok {
		return DefaultResponse(action, lang, tenant, pending)
	}
	switch action {
	case models.ActionPendingStatus:
		return fmt.Sprintf(tmpl, pendingLabel(pending, lang))
	case models.ActionAnswer:
		return fmt.Sprintf(tmpl, tenantName(tenant, lang))
	default:
		return tmpl
	}
}

// noPendingBooking keys the PENDING_STATUS reply for customers with nothing pending.
const noPendingBooking models.Action = "PENDING_STATUS_NONE"

var defaultReplies = map[string]map[models.Action]string{
	LangEnglish: {
		models.ActionShowAvailability: "Absolutely! Let me share the next open slots.",
		models.ActionPendingStatus:    "We're waiting for the team to approve your booking for %s.",
		noPendingBooking:              "I couldn't find a pending booking. Would you like to book a new appointment?",
		models.ActionCancelBooking:    "Okay, I'll cancel that. Let me know if you'd like a different time.",
		models.ActionEscalate:         "I'll let the team know you'd like to speak with someone. Expect a follow-up soon.",
		models.ActionAnswer:           "This is the %s assistant. How can I help you today?",
		models.ActionUnknown:          "I'm struggling to understand that request right now. Try asking about booking a time or our services.",
	},
	LangHebrew: {
		models.ActionShowAvailability: "בטח! הנה התורים הפנויים הקרובים.",
		models.ActionPendingStatus:    "אנחנו ממתינים לאישור הצוות לתור שלך ל-%s.",
		noPendingBooking:              "לא מצאתי תור ממתין. תרצה לקבוע תור חדש?",
		models.ActionCancelBooking:    "בסדר, אבטל את זה. ספרו לנו אם תרצו זמן אחר.",
		models.ActionEscalate:         "אעדכן את הצוות שתרצה לדבר עם מישהו. ניצור קשר בקרוב.",
		models.ActionAnswer:           "כאן העוזר של %s. איך אפשר לעזור היום?",
		models.ActionUnknown:          "קשה לי להבין את הבקשה כרגע. נסו לשאול על קביעת תור או על השירותים שלנו.",
	},
	LangArabic: {
		models.ActionShowAvailability: "بالتأكيد! إليك أقرب المواعيد المتاحة.",
		models.ActionPendingStatus:    "ننتظر موافقة الفريق على حجزك في %s.",
		noPendingBooking:              "لم أجد حجزاً معلقاً. هل ترغب في حجز موعد جديد؟",
		models.ActionCancelBooking:    "حسناً، سألغي ذلك. أخبرنا إن كنت تفضل وقتاً آخر.",
		models.ActionEscalate:         "سأبلغ الفريق برغبتك في التحدث مع أحدهم. توقع متابعة قريباً.",
		models.ActionAnswer:           "هذا مساعد %s. كيف يمكنني مساعدتك اليوم؟",
		models.ActionUnknown:          "أجد صعوبة في فهم هذا الطلب الآن. جرّب السؤال عن حجز موعد أو عن خدماتنا.",
	},
}

// DefaultResponse is the localized reply used whenever a tier produced no usable text
// for action. It is never empty.
func DefaultResponse(action models.Action, lang string, tenant *models.Tenant, pending *models.PendingBooking) string {
	table := defaultReplies[NormalizeLanguage(lang)]
	switch action {
	case models.ActionPendingStatus:
		if pending == nil {
			return table[noPendingBooking]
		}
		return fmt.Sprintf(table[action], pendingLabel(pending, lang))
	case models.ActionAnswer:
		return fmt.Sprintf(table[action], tenantName(tenant, lang))
	}
	if text, ok := table[action]; ok {
		return text
	}
	return table[models.ActionUnknown]
}

func pendingLabel(pending *models.PendingBooking, lang string) string {
	if pending != nil && pending.DisplayLabel != "" {
		return pending.DisplayLabel
	}
	switch NormalizeLanguage(lang) {
	case LangHebrew:
		return "המועד המבוקש"
	case LangArabic:
		return "الموعد المطلوب"
	default:
		return "the requested time"
	}
}

func tenantName(tenant *models.Tenant, lang string) string {
	if tenant != nil && tenant.DisplayName != "" {
		return tenant.DisplayName
	}
	switch NormalizeLanguage(lang) {
	case LangHebrew:
		return "הסלון"
	case LangArabic:
		return "الصالون"
	default:
		return "the salon"
	}
}
