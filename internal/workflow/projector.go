/**
 * @description
 * The workflow projector maps a server-reported lead/assignment status (plus
 * a couple of auxiliary flags) to the screen and action set the operator
 * should see. It is a finite lookup, not a transition engine: the client
 * never computes the next status, it only asks the server to perform an
 * action and re-reads the result.
 *
 * The status enumeration is owned by the server and can grow independently
 * of client releases, so every unrecognized value projects to the neutral
 * "unknown" screen instead of failing.
 */

package workflow

import (
	"strings"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// Screen identifies which surface to present for a given status.
type Screen string

const (
	ScreenClaim            Screen = "claim"
	ScreenStartJourney     Screen = "start_journey"
	ScreenCheckIn          Screen = "check_in"
	ScreenVerifyCode       Screen = "verify_code"
	ScreenStartInspection  Screen = "start_inspection"
	ScreenInspection       Screen = "inspection"
	ScreenOffer            Screen = "offer"
	ScreenAwaitingResponse Screen = "awaiting_response"
	ScreenSummary          Screen = "summary"
	ScreenCancelled        Screen = "cancelled"
	ScreenUnknown          Screen = "unknown"
)

// Action is an operation the operator may trigger from the current screen.
type Action string

const (
	ActionClaim              Action = "claim"
	ActionAccept             Action = "accept"
	ActionReject             Action = "reject"
	ActionStartJourney       Action = "start_journey"
	ActionCheckIn            Action = "check_in"
	ActionVerifyCode         Action = "verify_code"
	ActionStartInspection    Action = "start_inspection"
	ActionContinueInspection Action = "continue_inspection"
	ActionSubmitOffer        Action = "submit_offer"
)

// Flags carries the auxiliary booleans that disambiguate statuses the server
// reuses across workflow phases.
type Flags struct {
	// CodeVerified reports whether the customer's visit code has already
	// been verified for a checked-in visit.
	CodeVerified bool
	// InspectionSubmitted reports whether the inspection result has been
	// submitted; it distinguishes a post-offer "accepted" from the
	// post-claim "accepted" that still needs a journey started.
	InspectionSubmitted bool
}

// Projection is the outcome of projecting one status: the screen to show,
// the actions available on it, and whether the workflow has terminated.
type Projection struct {
	Screen   Screen
	Actions  []Action
	Terminal bool
	// NeedsPosition marks actions that require a device geolocation fix
	// before they can be issued (check-in).
	NeedsPosition bool
}

// FlagsFor derives projection flags from an assignment snapshot.
func FlagsFor(a domain.Assignment) Flags {
	return Flags{
		CodeVerified:        a.CodeVerified,
		InspectionSubmitted: a.InspectionSubmitted,
	}
}

// Project returns the screen and action set for a status. Statuses are
// normalized (trimmed, lowercased) before lookup so cosmetic differences in
// server payloads do not break projection.
func Project(status domain.AssignmentStatus, flags Flags) Projection {
	normalized := domain.AssignmentStatus(strings.ToLower(strings.TrimSpace(string(status))))

	switch normalized {
	case domain.StatusBooked:
		return Projection{Screen: ScreenClaim, Actions: []Action{ActionClaim}}

	case domain.StatusAssigned:
		return Projection{Screen: ScreenClaim, Actions: []Action{ActionAccept, ActionReject}}

	case domain.StatusPartnerAssigned:
		return Projection{Screen: ScreenStartJourney, Actions: []Action{ActionStartJourney}}

	case domain.StatusAccepted:
		// The server reuses "accepted" both after a claim is accepted and
		// after the customer accepts an offer. The inspection flag tells
		// the two phases apart.
		if flags.InspectionSubmitted {
			return Projection{Screen: ScreenAwaitingResponse}
		}
		return Projection{Screen: ScreenStartJourney, Actions: []Action{ActionStartJourney}}

	case domain.StatusEnRoute:
		return Projection{Screen: ScreenCheckIn, Actions: []Action{ActionCheckIn}, NeedsPosition: true}

	case domain.StatusCheckedIn, domain.StatusArrived:
		if !flags.CodeVerified {
			return Projection{Screen: ScreenVerifyCode, Actions: []Action{ActionVerifyCode}}
		}
		return Projection{Screen: ScreenStartInspection, Actions: []Action{ActionStartInspection}}

	case domain.StatusInspecting:
		return Projection{Screen: ScreenInspection, Actions: []Action{ActionContinueInspection}}

	case domain.StatusInspectionCompleted:
		return Projection{Screen: ScreenOffer, Actions: []Action{ActionSubmitOffer}}

	case domain.StatusOfferMade, domain.StatusNegotiating:
		return Projection{Screen: ScreenAwaitingResponse}

	case domain.StatusCompleted:
		return Projection{Screen: ScreenSummary, Terminal: true}

	case domain.StatusCancelled, domain.StatusRejected:
		return Projection{Screen: ScreenCancelled, Terminal: true}
	}

	return Projection{Screen: ScreenUnknown}
}

// ProjectAssignment is a convenience wrapper over Project for a full
// assignment snapshot.
func ProjectAssignment(a domain.Assignment) Projection {
	return Project(a.Status, FlagsFor(a))
}
