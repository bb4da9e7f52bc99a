package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chatbook/models"
)

// priceLine renders "<name> · <currency> <price>", or "" for free services.
func priceLine(svc *models.Service) string {
	if svc == nil || svc.Price <= 0 {
		return ""
	}
	return fmt.Sprintf("%s · %s", svc.Name, formatPrice(svc.Currency, svc.Price))
}

// serviceCatalog lists every service of the tenant, one bullet per line.
func serviceCatalog(tenant *models.Tenant) string {
	lines := make([]string, 0, len(tenant.Services))
	for _, svc := range tenant.Services {
		if svc.Price > 0 {
			lines = append(lines, fmt.Sprintf("• %s (%s)", svc.Name, formatPrice(svc.Currency, svc.Price)))
		} else {
			lines = append(lines, "• "+svc.Name)
		}
	}
	return strings.Join(lines, "\n")
}

func formatPrice(currency string, price float64) string {
	amount := strconv.FormatFloat(price, 'f', -1, 64)
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

// effectiveDuration is the longer of the service maximum and the calendar slot.
func effectiveDuration(tenant *models.Tenant, svc *models.Service) time.Duration {
	minutes := tenant.Calendar.SlotDurationMinutes
	if svc != nil && svc.MaxMinutes > minutes {
		minutes = svc.MaxMinutes
	}
	if minutes <= 0 {
		minutes = 45
	}
	return time.Duration(minutes) * time.Minute
}
