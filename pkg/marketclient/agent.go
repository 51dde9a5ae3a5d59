/**
 * @description
 * Agent field-operations endpoints: profile, availability, the assignment
 * list and the per-assignment workflow actions (accept through complete or
 * cancel), price calculation, and the activity trail.
 */

package marketclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// AgentProfile fetches the agent's field profile.
func (c *Client) AgentProfile(ctx context.Context) (*domain.AgentProfile, error) {
	var out domain.AgentProfile
	if err := c.private(ctx, http.MethodGet, "/agent/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAgentAvailability toggles whether the agent receives assignments.
func (c *Client) SetAgentAvailability(ctx context.Context, available bool) error {
	return c.private(ctx, http.MethodPut, "/agent/availability", availabilityRequest{Available: available}, nil)
}

// AssignmentListOptions narrows an assignment listing.
type AssignmentListOptions struct {
	Status domain.AssignmentStatus
	Limit  int
	Offset int
}

func (o AssignmentListOptions) query() url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// Assignments lists the agent's assignments.
func (c *Client) Assignments(ctx context.Context, opts AssignmentListOptions) ([]domain.Assignment, error) {
	var out []domain.Assignment
	if err := c.private(ctx, http.MethodGet, queryPath("/agent/assignments", opts.query()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Assignment fetches one assignment by id.
func (c *Client) Assignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodGet, fmt.Sprintf("/agent/assignments/%s", assignmentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// assignmentAction posts a bare workflow action and decodes the updated
// assignment snapshot.
func (c *Client) assignmentAction(ctx context.Context, assignmentID, action string, req interface{}) (*domain.Assignment, error) {
	var out domain.Assignment
	path := fmt.Sprintf("/agent/assignments/%s/%s", assignmentID, action)
	if err := c.private(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptAssignment accepts a newly assigned lead.
func (c *Client) AcceptAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "accept", nil)
}

// RejectAssignmentRequest carries the rejection reason.
type RejectAssignmentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RejectAssignment rejects a newly assigned lead.
func (c *Client) RejectAssignment(ctx context.Context, assignmentID string, req RejectAssignmentRequest) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "reject", req)
}

// StartJourney marks the agent en route to the pickup address.
func (c *Client) StartJourney(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "start-journey", nil)
}

// AgentCheckIn records arrival with a geolocation fix.
func (c *Client) AgentCheckIn(ctx context.Context, assignmentID string, req CheckInRequest) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "check-in", req)
}

// AgentVerifyCode validates the customer's visit code.
func (c *Client) AgentVerifyCode(ctx context.Context, assignmentID string, req VerifyCodeRequest) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "verify-code", req)
}

// StartInspection moves the assignment into the inspecting state.
func (c *Client) StartInspection(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "inspection/start", nil)
}

// SubmitInspectionRequest submits the finished checklist and evidence.
type SubmitInspectionRequest struct {
	Answers          []domain.ChecklistAnswer `json:"answers"`
	Notes            string                   `json:"notes,omitempty"`
	RecommendedPrice int64                    `json:"recommended_price"`
}

// SubmitInspection submits the inspection checklist for an assignment.
func (c *Client) SubmitInspection(ctx context.Context, assignmentID string, req SubmitInspectionRequest) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "inspection/submit", req)
}

// UploadInspectionPhoto attaches one captured image to the inspection.
func (c *Client) UploadInspectionPhoto(ctx context.Context, assignmentID, label string, file UploadFile) error {
	fields := map[string]string{"label": label}
	path := fmt.Sprintf("/agent/assignments/%s/inspection/photos", assignmentID)
	return c.privateMultipart(ctx, path, fields, []UploadFile{file}, nil)
}

// UploadSignature attaches the customer's signature image to the deal.
func (c *Client) UploadSignature(ctx context.Context, assignmentID string, file UploadFile) error {
	path := fmt.Sprintf("/agent/assignments/%s/signature", assignmentID)
	return c.privateMultipart(ctx, path, nil, []UploadFile{file}, nil)
}

// CalculatePriceRequest asks the server to price the inspected device.
type CalculatePriceRequest struct {
	Answers []domain.ChecklistAnswer `json:"answers"`
}

// CalculatePriceResult is the server-computed price breakdown.
type CalculatePriceResult struct {
	OriginalPrice int64              `json:"original_price"`
	Deductions    []domain.Deduction `json:"deductions"`
	ComputedPrice int64              `json:"computed_price"`
}

// CalculatePrice asks the server to recompute the price from checklist
// answers. The client-side PriceAdjustment mirrors this for display only.
func (c *Client) CalculatePrice(ctx context.Context, assignmentID string, req CalculatePriceRequest) (*CalculatePriceResult, error) {
	var out CalculatePriceResult
	path := fmt.Sprintf("/agent/assignments/%s/price/calculate", assignmentID)
	if err := c.private(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitPriceRequest submits the final negotiated price.
type SubmitPriceRequest struct {
	FinalPrice int64  `json:"final_price"`
	Notes      string `json:"notes,omitempty"`
}

// SubmitPrice submits the final price offer to the customer.
func (c *Client) SubmitPrice(ctx context.Context, assignmentID string, req SubmitPriceRequest) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "price/submit", req)
}

// CompleteDeal finalizes the trade-in after customer acceptance.
func (c *Client) CompleteDeal(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "complete", nil)
}

// CancelAssignmentRequest carries the cancellation reason.
type CancelAssignmentRequest struct {
	Reason string `json:"reason"`
}

// CancelAssignment cancels an in-progress assignment.
func (c *Client) CancelAssignment(ctx context.Context, assignmentID string, req CancelAssignmentRequest) (*domain.Assignment, error) {
	return c.assignmentAction(ctx, assignmentID, "cancel", req)
}

// ActivityLogs fetches the action trail for an assignment.
func (c *Client) ActivityLogs(ctx context.Context, assignmentID string) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	path := fmt.Sprintf("/agent/assignments/%s/activity-logs", assignmentID)
	if err := c.private(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
