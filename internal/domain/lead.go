/**
 * @description
 * Lead and assignment models. These are read-only projections of server-owned
 * entities: the backend owns every status transition, the client only renders
 * the current status and asks the server to move it forward.
 *
 * The status enumeration is closed on the server but open from the client's
 * point of view: the backend can ship new statuses independently of a client
 * release, so nothing in this package may assume the set below is exhaustive.
 */

package domain

import "time"

// AssignmentStatus is the server-reported workflow status of a lead or
// assignment. Values outside the declared constants must be tolerated.
type AssignmentStatus string

const (
	StatusBooked              AssignmentStatus = "booked"
	StatusAssigned            AssignmentStatus = "assigned"
	StatusPartnerAssigned     AssignmentStatus = "partner_assigned"
	StatusAccepted            AssignmentStatus = "accepted"
	StatusEnRoute             AssignmentStatus = "en_route"
	StatusCheckedIn           AssignmentStatus = "checked_in"
	StatusArrived             AssignmentStatus = "arrived"
	StatusInspecting          AssignmentStatus = "inspecting"
	StatusInspectionCompleted AssignmentStatus = "inspection_completed"
	StatusOfferMade           AssignmentStatus = "offer_made"
	StatusNegotiating         AssignmentStatus = "negotiating"
	StatusCompleted           AssignmentStatus = "completed"
	StatusCancelled           AssignmentStatus = "cancelled"
	StatusRejected            AssignmentStatus = "rejected"
)

// Device describes the item being traded in.
type Device struct {
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Variant  string `json:"variant,omitempty"`
	IMEI     string `json:"imei,omitempty"`
}

// Customer is the denormalized customer snapshot attached to a lead.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Address is the pickup address for a visit.
type Address struct {
	Line1     string   `json:"line1"`
	Line2     string   `json:"line2,omitempty"`
	City      string   `json:"city"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Position is a device geolocation fix captured at check-in time.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Lead is a customer trade-in request visible to partners and agents.
type Lead struct {
	ID             string           `json:"id"`
	Status         AssignmentStatus `json:"status"`
	Device         Device           `json:"device"`
	Customer       Customer         `json:"customer"`
	PickupAddress  Address          `json:"pickup_address"`
	EstimatedPrice int64            `json:"estimated_price"`
	ClaimFee       int64            `json:"claim_fee"`
	PreferredSlot  *time.Time       `json:"preferred_slot,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Assignment associates a claimed lead with a specific partner or agent,
// keyed by its own id. Auxiliary flags the projector consumes ride along.
type Assignment struct {
	ID                  string           `json:"id"`
	LeadID              string           `json:"lead_id"`
	Status              AssignmentStatus `json:"status"`
	Lead                Lead             `json:"lead"`
	CodeVerified        bool             `json:"code_verified"`
	InspectionSubmitted bool             `json:"inspection_submitted"`
	FinalPrice          *int64           `json:"final_price,omitempty"`
	CancelReason        *string          `json:"cancel_reason,omitempty"`
	AssignedAt          time.Time        `json:"assigned_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ActivityLog is one row of the agent activity trail for an assignment.
type ActivityLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClaimPreview is the wallet deduction shown to a partner before a claim is
// confirmed. The claim fee is non-refundable and charged on top of the
// estimated price that gets reserved against the wallet.
type ClaimPreview struct {
	LeadID         string `json:"lead_id"`
	EstimatedPrice int64  `json:"estimated_price"`
	ClaimFee       int64  `json:"claim_fee"`
	TotalDeduction int64  `json:"total_deduction"`
}

// NewClaimPreview computes the total wallet deduction for claiming a lead.
func NewClaimPreview(l Lead) ClaimPreview {
	return ClaimPreview{
		LeadID:         l.ID,
		EstimatedPrice: l.EstimatedPrice,
		ClaimFee:       l.ClaimFee,
		TotalDeduction: l.EstimatedPrice + l.ClaimFee,
	}
}
