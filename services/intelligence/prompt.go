package ai

import (
	"fmt"
	"strings"

	"chatbook/models"
)

// BuildSystemPrompt describes the business, the action set and the customer's
// pending booking to the classifier.
func BuildSystemPrompt(tenant *models.Tenant, pending *models.PendingBooking, lang string) string {
	timezone := "UTC"
	var services []string
	if tenant != nil {
		if tenant.Calendar.Timezone != "" {
			timezone = tenant.Calendar.Timezone
		}
		for _, svc := range tenant.Services {
			services = append(services, fmt.Sprintf("%s (id %s)", svc.Name, svc.ID))
		}
	}

	lines := []string{
		fmt.Sprintf("You are the booking assistant for %s.", tenantName(tenant, LangEnglish)),
		"Keep replies friendly, concise and helpful.",
		"Detect the customer's intent and choose one action:",
		" - SHOW_AVAILABILITY: the customer wants to book or change an appointment.",
		" - PENDING_STATUS: the customer asks about an existing booking awaiting approval.",
		" - CANCEL_BOOKING: the customer wants to cancel an upcoming booking.",
		" - ANSWER: a general question you can answer directly.",
		" - ESCALATE: the customer asks for a human or has an issue you cannot solve.",
		" - UNKNOWN: the intent cannot be determined.",
		"Always put a short reply to the customer in the response field.",
		fmt.Sprintf("Reply in the language the customer wrote in (detected: %s).", languageName(lang)),
		"If the customer names a service, copy its id into the service field.",
		"If the customer names a time, put it in preferred_time as an ISO-8601 local date-time when you can.",
		fmt.Sprintf("Current timezone: %s.", timezone),
	}
	if len(services) > 0 {
		lines = append(lines, "Services: "+strings.Join(services, ", ")+".")
	}
	if pending != nil {
		lines = append(lines, fmt.Sprintf("A pending booking exists: %s on %s, awaiting owner approval.",
			pending.ServiceName, pendingLabel(pending, LangEnglish)))
	} else {
		lines = append(lines, "There is no pending booking right now.")
	}
	return strings.Join(lines, "\n")
}

func BuildUserPrompt(text string, pending *models.PendingBooking) string {
	status := "Customer has no pending booking on file."
	if pending != nil {
		status = fmt.Sprintf("Customer is waiting for approval of %s.", pendingLabel(pending, LangEnglish))
	}
	return strings.Join([]string{"Customer message:", text, status}, "\n")
}
