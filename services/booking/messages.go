package booking

import (
	"fmt"

	ai "chatbook/services/intelligence"
)

type messageKey int

const (
	msgAck messageKey = iota
	msgChooseService
	msgFullyBooked
	msgCouldNotUnderstand
	msgInvalidSlot
	msgSlotExpired
	msgSlotTaken
	msgNothingPending
	msgNothingToCancel
	msgNoPendingInvite
	msgStillWaiting
	msgAwaitingApproval
	msgApproved
	msgRejected
	msgPickTime
	msgCancelPrompt
	btnApprove
	btnReject
	btnOtherTimes
	btnShowTimes
)

var catalog = map[string]map[messageKey]string{
	ai.LangEnglish: {
		msgAck:                "Got it ✅",
		msgChooseService:      "Which service would you like? Here is what we offer:",
		msgFullyBooked:        "Sorry, we're fully booked for the next few days. Try another time or reply with a preferred day.",
		msgCouldNotUnderstand: "Sorry, I couldn't understand that. Tell me what you'd like to book and I'll suggest times.",
		msgInvalidSlot:        "Sorry, I couldn't read that time slot. Please pick one of the offered times.",
		msgSlotExpired:        "That time has already passed. Here are the next openings:",
		msgSlotTaken:          "That time is no longer available. Here are the next openings:",
		msgNothingPending:     "You don't have a pending booking.",
		msgNothingToCancel:    "I don't see a pending booking to cancel.",
		msgNoPendingInvite:    "I don't see a pending booking. Want me to show the next openings?",
		msgStillWaiting:       "We're still waiting for approval for %s on %s.",
		msgAwaitingApproval:   "Thanks! Waiting for approval for %s on %s.",
		msgApproved:           "Approved ✅ %s on %s",
		msgRejected:           "Cancelled ❌ %s on %s is now open.",
		msgPickTime:           "Pick a time (%s)",
		msgCancelPrompt:       "Cancel this booking?",
		btnApprove:            "Approve (Owner)",
		btnReject:             "Reject",
		btnOtherTimes:         "See other times",
		btnShowTimes:          "See open times",
	},
	ai.LangHebrew: {
		msgAck:                "קיבלתי ✅",
		msgChooseService:      "איזה שירות תרצו? אלה השירותים שלנו:",
		msgFullyBooked:        "מצטערים, אין זמינות בימים הקרובים. נסו מועד אחר או כתבו יום מועדף.",
		msgCouldNotUnderstand: "סליחה, לא הבנתי. כתבו מה תרצו לקבוע ואציע מועדים.",
		msgInvalidSlot:        "סליחה, לא הצלחתי לקרוא את המועד. בחרו אחד מהמועדים המוצעים.",
		msgSlotExpired:        "המועד הזה כבר עבר. אלה המועדים הפנויים הבאים:",
		msgSlotTaken:          "המועד הזה כבר לא פנוי. אלה המועדים הפנויים הבאים:",
		msgNothingPending:     "אין לך הזמנה ממתינה.",
		msgNothingToCancel:    "לא מצאתי הזמנה ממתינה לביטול.",
		msgNoPendingInvite:    "לא מצאתי הזמנה ממתינה. להציג את המועדים הפנויים?",
		msgStillWaiting:       "עדיין ממתינים לאישור עבור %s ב-%s.",
		msgAwaitingApproval:   "תודה! ממתינים לאישור עבור %s ב-%s.",
		msgApproved:           "אושר ✅ %s ב-%s",
		msgRejected:           "בוטל ❌ %s ב-%s פנוי שוב.",
		msgPickTime:           "בחרו מועד (%s)",
		msgCancelPrompt:       "לבטל את ההזמנה?",
		btnApprove:            "אישור (בעלים)",
		btnReject:             "דחייה",
		btnOtherTimes:         "מועדים אחרים",
		btnShowTimes:          "מועדים פנויים",
	},
	ai.LangArabic: {
		msgAck:                "تم الاستلام ✅",
		msgChooseService:      "ما الخدمة التي تريدها؟ هذه خدماتنا:",
		msgFullyBooked:        "عذراً، لا توجد مواعيد متاحة في الأيام القادمة. جرّب وقتاً آخر أو اكتب يوماً تفضله.",
		msgCouldNotUnderstand: "عذراً، لم أفهم ذلك. أخبرني بما تريد حجزه وسأقترح مواعيد.",
		msgInvalidSlot:        "عذراً، لم أتمكن من قراءة هذا الموعد. اختر أحد المواعيد المعروضة.",
		msgSlotExpired:        "لقد مضى هذا الموعد. هذه المواعيد المتاحة التالية:",
		msgSlotTaken:          "هذا الموعد لم يعد متاحاً. هذه المواعيد المتاحة التالية:",
		msgNothingPending:     "ليس لديك حجز قيد الانتظار.",
		msgNothingToCancel:    "لا أجد حجزاً قيد الانتظار لإلغائه.",
		msgNoPendingInvite:    "لا أجد حجزاً قيد الانتظار. هل أعرض المواعيد المتاحة؟",
		msgStillWaiting:       "ما زلنا بانتظار الموافقة على %s في %s.",
		msgAwaitingApproval:   "شكراً! بانتظار الموافقة على %s في %s.",
		msgApproved:           "تمت الموافقة ✅ %s في %s",
		msgRejected:           "تم الإلغاء ❌ %s في %s أصبح متاحاً.",
		msgPickTime:           "اختر موعداً (%s)",
		msgCancelPrompt:       "هل تريد إلغاء هذا الحجز؟",
		btnApprove:            "موافقة (المالك)",
		btnReject:             "رفض",
		btnOtherTimes:         "مواعيد أخرى",
		btnShowTimes:          "المواعيد المتاحة",
	},
}

// localize renders key in lang, falling back to English.
func localize(lang string, key messageKey, args ...interface{}) string {
	format, ok := catalog[ai.NormalizeLanguage(lang)][key]
	if !ok {
		format = catalog[ai.LangEnglish][key]
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
