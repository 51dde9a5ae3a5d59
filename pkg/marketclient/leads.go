/**
 * @description
 * Lead endpoints for the partner surface: browse available leads, list
 * claimed ones, claim, and create an offer.
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

// LeadListOptions narrows a lead listing.
type LeadListOptions struct {
	Pincode string
	Limit   int
	Offset  int
}

func (o LeadListOptions) query() url.Values {
	q := url.Values{}
	if o.Pincode != "" {
		q.Set("pincode", o.Pincode)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// AvailableLeads lists unclaimed leads visible to the partner.
func (c *Client) AvailableLeads(ctx context.Context, opts LeadListOptions) ([]domain.Lead, error) {
	var out []domain.Lead
	if err := c.private(ctx, http.MethodGet, queryPath("/leads/available", opts.query()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyLeads lists the partner's claimed leads.
func (c *Client) MyLeads(ctx context.Context, opts LeadListOptions) ([]domain.Assignment, error) {
	var out []domain.Assignment
	if err := c.private(ctx, http.MethodGet, queryPath("/leads/mine", opts.query()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Lead fetches one lead by id.
func (c *Client) Lead(ctx context.Context, leadID string) (*domain.Lead, error) {
	var out domain.Lead
	if err := c.private(ctx, http.MethodGet, fmt.Sprintf("/leads/%s", leadID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimLead claims a lead for the partner. The claim fee is deducted from
// the wallet server-side; the response is the resulting assignment.
func (c *Client) ClaimLead(ctx context.Context, leadID string) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/leads/%s/claim", leadID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOfferRequest submits a price offer against a lead.
type CreateOfferRequest struct {
	Price int64  `json:"price"`
	Notes string `json:"notes,omitempty"`
}

// CreateOffer submits a price offer for a claimed lead.
func (c *Client) CreateOffer(ctx context.Context, leadID string, req CreateOfferRequest) (*domain.Assignment, error) {
	var out domain.Assignment
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/leads/%s/offer", leadID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
