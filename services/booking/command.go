package booking

import (
	"strings"
	"time"
)

// Reply tokens carried by interactive buttons.
const (
	ApproveToken = "approve_me"
	RejectToken  = "reject_me"

	slotPrefix          = "slot::"
	legacySlotPrefix    = "slot_"
	showServicePrefix   = "showservice::"
	defaultServiceToken = "default"
	showAvailabilityRaw = "SHOW_AVAILABILITY"
)

type CommandKind int

const (
	// CommandText is free text handed to the intent resolver.
	CommandText CommandKind = iota
	CommandSelectSlot
	CommandApprove
	CommandReject
	CommandShowAvailability
	// CommandInvalidSlot is a slot token whose timestamp does not parse.
	CommandInvalidSlot
)

func (k CommandKind) String() string {
	switch k {
	case CommandSelectSlot:
		return "select_slot"
	case CommandApprove:
		return "approve"
	case CommandReject:
		return "reject"
	case CommandShowAvailability:
		return "show_availability"
	case CommandInvalidSlot:
		return "invalid_slot"
	default:
		return "text"
	}
}

// Command is the decoded form of an inbound message body or reply id.
type Command struct {
	Kind      CommandKind
	ServiceID string
	Start     time.Time
	Text      string
}

// DecodeCommand recognizes the structured tokens this service emits. Anything
// else is CommandText.
func DecodeCommand(raw string) Command {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == ApproveToken:
		return Command{Kind: CommandApprove}
	case raw == RejectToken:
		return Command{Kind: CommandReject}
	case raw == showAvailabilityRaw:
		return Command{Kind: CommandShowAvailability}
	case strings.HasPrefix(raw, showServicePrefix):
		return Command{Kind: CommandShowAvailability, ServiceID: serviceFromToken(strings.TrimPrefix(raw, showServicePrefix))}
	case strings.HasPrefix(raw, slotPrefix):
		parts := strings.SplitN(strings.TrimPrefix(raw, slotPrefix), "::", 2)
		if len(parts) != 2 {
			return Command{Kind: CommandInvalidSlot}
		}
		start, err := time.Parse(time.RFC3339Nano, parts[1])
		if err != nil {
			return Command{Kind: CommandInvalidSlot}
		}
		return Command{Kind: CommandSelectSlot, ServiceID: serviceFromToken(parts[0]), Start: start.UTC()}
	case strings.HasPrefix(raw, legacySlotPrefix):
		start, err := time.Parse(time.RFC3339Nano, strings.TrimPrefix(raw, legacySlotPrefix))
		if err != nil {
			return Command{Kind: CommandInvalidSlot}
		}
		return Command{Kind: CommandSelectSlot, Start: start.UTC()}
	default:
		return Command{Kind: CommandText, Text: raw}
	}
}

// EncodeSlotToken builds the reply id of a slot button: slot::<serviceID>::<UTC RFC3339>.
func EncodeSlotToken(serviceID string, start time.Time) string {
	return slotPrefix + serviceToken(serviceID) + "::" + start.UTC().Format(time.RFC3339Nano)
}

// EncodeShowAvailabilityToken builds the reply id of a "see times" button.
func EncodeShowAvailabilityToken(serviceID string) string {
	return showServicePrefix + serviceToken(serviceID)
}

func serviceToken(id string) string {
	if id == "" {
		return defaultServiceToken
	}
	return id
}

func serviceFromToken(token string) string {
	token = strings.TrimSpace(token)
	if token == defaultServiceToken {
		return ""
	}
	return token
}
