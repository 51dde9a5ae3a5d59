/**
 * @description
 * Visit endpoints shared by the partner surface: the in-person pickup and
 * inspection encounter tied to a claimed lead.
 */

package marketclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// Visit fetches the visit attached to an assignment.
func (c *Client) Visit(ctx context.Context, visitID string) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodGet, fmt.Sprintf("/visits/%s", visitID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckInRequest carries the geolocation fix captured at the door.
type CheckInRequest struct {
	Position domain.Position `json:"position"`
}

// CheckIn records arrival at the pickup address.
func (c *Client) CheckIn(ctx context.Context, visitID string, req CheckInRequest) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/visits/%s/check-in", visitID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyCodeRequest carries the customer's visit code.
type VerifyCodeRequest struct {
	Code string `json:"code"`
}

// VerifyCode validates the customer's visit code.
func (c *Client) VerifyCode(ctx context.Context, visitID string, req VerifyCodeRequest) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/visits/%s/verify-code", visitID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartVisitInspection moves the visit into the inspecting state.
func (c *Client) StartVisitInspection(ctx context.Context, visitID string) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/visits/%s/inspection/start", visitID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteVisitInspectionRequest submits the finished checklist.
type CompleteVisitInspectionRequest struct {
	Answers          []domain.ChecklistAnswer `json:"answers"`
	Notes            string                   `json:"notes,omitempty"`
	RecommendedPrice int64                    `json:"recommended_price"`
}

// CompleteVisitInspection submits the inspection result for the visit.
func (c *Client) CompleteVisitInspection(ctx context.Context, visitID string, req CompleteVisitInspectionRequest) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/visits/%s/inspection/complete", visitID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checklist fetches the server-defined inspection questions for a visit.
func (c *Client) Checklist(ctx context.Context, visitID string) ([]domain.ChecklistQuestion, error) {
	var out []domain.ChecklistQuestion
	if err := c.private(ctx, http.MethodGet, fmt.Sprintf("/visits/%s/checklist", visitID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateChecklistRequest saves partial checklist progress server-side.
type UpdateChecklistRequest struct {
	Answers []domain.ChecklistAnswer `json:"answers"`
}

// UpdateChecklist saves partial checklist answers for a visit.
func (c *Client) UpdateChecklist(ctx context.Context, visitID string, req UpdateChecklistRequest) error {
	return c.private(ctx, http.MethodPut, fmt.Sprintf("/visits/%s/checklist", visitID), req, nil)
}
