package workflow

import (
	"testing"

	"github.com/flipcashindia/fieldops/internal/domain"
)

func TestProjectKnownStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.AssignmentStatus
		flags      Flags
		wantScreen Screen
		wantAction []Action
		terminal   bool
	}{
		{
			name:       "booked lead offers claim",
			status:     domain.StatusBooked,
			wantScreen: ScreenClaim,
			wantAction: []Action{ActionClaim},
		},
		{
			name:       "assigned lead offers accept and reject",
			status:     domain.StatusAssigned,
			wantScreen: ScreenClaim,
			wantAction: []Action{ActionAccept, ActionReject},
		},
		{
			name:       "partner assigned starts journey",
			status:     domain.StatusPartnerAssigned,
			wantScreen: ScreenStartJourney,
			wantAction: []Action{ActionStartJourney},
		},
		{
			name:       "accepted before inspection starts journey",
			status:     domain.StatusAccepted,
			wantScreen: ScreenStartJourney,
			wantAction: []Action{ActionStartJourney},
		},
		{
			name:       "accepted after inspection is read-only",
			status:     domain.StatusAccepted,
			flags:      Flags{InspectionSubmitted: true},
			wantScreen: ScreenAwaitingResponse,
		},
		{
			name:       "en route offers check-in",
			status:     domain.StatusEnRoute,
			wantScreen: ScreenCheckIn,
			wantAction: []Action{ActionCheckIn},
		},
		{
			name:       "checked in without code verification asks for code",
			status:     domain.StatusCheckedIn,
			wantScreen: ScreenVerifyCode,
			wantAction: []Action{ActionVerifyCode},
		},
		{
			name:       "arrived with verified code starts inspection",
			status:     domain.StatusArrived,
			flags:      Flags{CodeVerified: true},
			wantScreen: ScreenStartInspection,
			wantAction: []Action{ActionStartInspection},
		},
		{
			name:       "inspecting continues checklist",
			status:     domain.StatusInspecting,
			wantScreen: ScreenInspection,
			wantAction: []Action{ActionContinueInspection},
		},
		{
			name:       "inspection completed moves to offer",
			status:     domain.StatusInspectionCompleted,
			wantScreen: ScreenOffer,
			wantAction: []Action{ActionSubmitOffer},
		},
		{
			name:       "offer made is read-only",
			status:     domain.StatusOfferMade,
			wantScreen: ScreenAwaitingResponse,
		},
		{
			name:       "negotiating is read-only",
			status:     domain.StatusNegotiating,
			wantScreen: ScreenAwaitingResponse,
		},
		{
			name:       "completed is terminal summary",
			status:     domain.StatusCompleted,
			wantScreen: ScreenSummary,
			terminal:   true,
		},
		{
			name:       "cancelled is terminal",
			status:     domain.StatusCancelled,
			wantScreen: ScreenCancelled,
			terminal:   true,
		},
		{
			name:       "rejected is terminal",
			status:     domain.StatusRejected,
			wantScreen: ScreenCancelled,
			terminal:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.status, tt.flags)
			if got.Screen != tt.wantScreen {
				t.Fatalf("expected screen %q, got %q", tt.wantScreen, got.Screen)
			}
			if len(got.Actions) != len(tt.wantAction) {
				t.Fatalf("expected %d actions, got %d (%v)", len(tt.wantAction), len(got.Actions), got.Actions)
			}
			for i, a := range tt.wantAction {
				if got.Actions[i] != a {
					t.Fatalf("expected action %q at %d, got %q", a, i, got.Actions[i])
				}
			}
			if got.Terminal != tt.terminal {
				t.Fatalf("expected terminal=%v, got %v", tt.terminal, got.Terminal)
			}
		})
	}
}

func TestProjectUnknownStatusFallsBack(t *testing.T) {
	for _, status := range []domain.AssignmentStatus{"some_future_status", "", "   ", "REOPENED"} {
		got := Project(status, Flags{})
		if got.Screen != ScreenUnknown {
			t.Fatalf("status %q: expected unknown screen, got %q", status, got.Screen)
		}
		if len(got.Actions) != 0 {
			t.Fatalf("status %q: expected no actions, got %v", status, got.Actions)
		}
	}
}

func TestProjectNormalizesStatusStrings(t *testing.T) {
	got := Project("  En_Route ", Flags{})
	if got.Screen != ScreenCheckIn {
		t.Fatalf("expected check-in screen for denormalized status, got %q", got.Screen)
	}
	if !got.NeedsPosition {
		t.Fatal("expected check-in projection to require a position fix")
	}
}

func TestEveryKnownStatusHasExactlyOneProjection(t *testing.T) {
	known := []domain.AssignmentStatus{
		domain.StatusBooked, domain.StatusAssigned, domain.StatusPartnerAssigned,
		domain.StatusAccepted, domain.StatusEnRoute, domain.StatusCheckedIn,
		domain.StatusArrived, domain.StatusInspecting, domain.StatusInspectionCompleted,
		domain.StatusOfferMade, domain.StatusNegotiating, domain.StatusCompleted,
		domain.StatusCancelled, domain.StatusRejected,
	}
	for _, status := range known {
		got := Project(status, Flags{})
		if got.Screen == ScreenUnknown {
			t.Fatalf("known status %q projected to unknown screen", status)
		}
	}
}
