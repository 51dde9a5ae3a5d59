/**
 * @description
 * Cache invalidation dispatcher. Server-affecting commands declare up front
 * which cached views they invalidate; after a command succeeds the service
 * reports it here and every clearer registered for the affected views runs.
 * This keeps invalidation a single-point change per command instead of ad
 * hoc per-call lists scattered through the flows.
 */

package app

import "sync"

// View names a client-side cached projection of server state.
type View string

const (
	ViewAvailableLeads View = "available_leads"
	ViewMyAssignments  View = "my_assignments"
	ViewPartnerProfile View = "partner_profile"
	ViewAgentProfile   View = "agent_profile"
	ViewWallet         View = "wallet"
)

// commandInvalidations is the declaration table: command name to the views
// its success invalidates.
var commandInvalidations = map[string][]View{
	"claim_lead":        {ViewAvailableLeads, ViewMyAssignments, ViewWallet, ViewPartnerProfile},
	"create_offer":      {ViewMyAssignments},
	"accept_assignment": {ViewMyAssignments, ViewAgentProfile},
	"reject_assignment": {ViewMyAssignments, ViewAgentProfile},
	"start_journey":     {ViewMyAssignments},
	"check_in":          {ViewMyAssignments},
	"verify_code":       {ViewMyAssignments},
	"start_inspection":  {ViewMyAssignments},
	"submit_inspection": {ViewMyAssignments},
	"submit_price":      {ViewMyAssignments},
	"complete_deal":     {ViewMyAssignments, ViewAgentProfile, ViewWallet},
	"cancel_assignment": {ViewMyAssignments, ViewAgentProfile},
	"update_profile":    {ViewPartnerProfile},
	"set_availability":  {ViewPartnerProfile, ViewAgentProfile},
	"document_change":   {ViewPartnerProfile},
	"bank_change":       {ViewPartnerProfile},
	"area_change":       {ViewPartnerProfile},
}

// Invalidator fans command completions out to registered view clearers.
type Invalidator struct {
	mu       sync.Mutex
	clearers map[View][]func()
}

// NewInvalidator creates an empty dispatcher.
func NewInvalidator() *Invalidator {
	return &Invalidator{clearers: make(map[View][]func())}
}

// Register adds a clearer for a view. Clearers must be safe to call at any
// time and must not block.
func (i *Invalidator) Register(v View, clear func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.clearers[v] = append(i.clearers[v], clear)
}

// Invalidate clears the given views directly.
func (i *Invalidator) Invalidate(views ...View) {
	i.mu.Lock()
	var pending []func()
	for _, v := range views {
		pending = append(pending, i.clearers[v]...)
	}
	i.mu.Unlock()

	for _, clear := range pending {
		clear()
	}
}

// CommandDone invalidates every view the named command declares. Unknown
// commands clear nothing.
func (i *Invalidator) CommandDone(command string) {
	i.Invalidate(commandInvalidations[command]...)
}
