/**
 * @description
 * Partner profile endpoints: business profile, availability toggle, KYC
 * documents, bank accounts and service areas. All run on the private channel.
 */

package marketclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// PartnerProfile fetches the partner business profile.
func (c *Client) PartnerProfile(ctx context.Context) (*domain.PartnerProfile, error) {
	var out domain.PartnerProfile
	if err := c.private(ctx, http.MethodGet, "/partner/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePartnerProfileRequest carries the editable profile fields.
type UpdatePartnerProfileRequest struct {
	BusinessName string `json:"business_name,omitempty"`
	GSTIN        string `json:"gstin,omitempty"`
}

// UpdatePartnerProfile updates the partner business profile.
func (c *Client) UpdatePartnerProfile(ctx context.Context, req UpdatePartnerProfileRequest) (*domain.PartnerProfile, error) {
	var out domain.PartnerProfile
	if err := c.private(ctx, http.MethodPatch, "/partner/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

// SetPartnerAvailability toggles whether the partner receives new leads.
func (c *Client) SetPartnerAvailability(ctx context.Context, available bool) error {
	return c.private(ctx, http.MethodPut, "/partner/availability", availabilityRequest{Available: available}, nil)
}

// Documents lists the partner's KYC documents.
func (c *Client) Documents(ctx context.Context) ([]domain.Document, error) {
	var out []domain.Document
	if err := c.private(ctx, http.MethodGet, "/partner/documents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadDocument submits a KYC document as a multipart form.
func (c *Client) UploadDocument(ctx context.Context, docType string, file UploadFile) (*domain.Document, error) {
	var out domain.Document
	fields := map[string]string{"type": docType}
	if err := c.privateMultipart(ctx, "/partner/documents", fields, []UploadFile{file}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes an uploaded document. The backend rejects deleting
// verified documents; callers pre-check but the server stays authoritative.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.private(ctx, http.MethodDelete, fmt.Sprintf("/partner/documents/%s", documentID), nil, nil)
}

// BankAccounts lists the partner's payout accounts.
func (c *Client) BankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	var out []domain.BankAccount
	if err := c.private(ctx, http.MethodGet, "/partner/bank-accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddBankAccountRequest registers a new payout account.
type AddBankAccountRequest struct {
	HolderName    string `json:"holder_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
}

// AddBankAccount registers a new payout account.
func (c *Client) AddBankAccount(ctx context.Context, req AddBankAccountRequest) (*domain.BankAccount, error) {
	var out domain.BankAccount
	if err := c.private(ctx, http.MethodPost, "/partner/bank-accounts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBankAccount removes a payout account.
func (c *Client) DeleteBankAccount(ctx context.Context, accountID string) error {
	return c.private(ctx, http.MethodDelete, fmt.Sprintf("/partner/bank-accounts/%s", accountID), nil, nil)
}

// SetPrimaryBankAccount marks an account as the payout default.
func (c *Client) SetPrimaryBankAccount(ctx context.Context, accountID string) error {
	return c.private(ctx, http.MethodPost, fmt.Sprintf("/partner/bank-accounts/%s/set-primary", accountID), nil, nil)
}

// VerifyBankAccount starts penny-drop verification for an account.
func (c *Client) VerifyBankAccount(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	var out domain.BankAccount
	if err := c.private(ctx, http.MethodPost, fmt.Sprintf("/partner/bank-accounts/%s/verify", accountID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServiceAreas lists the pincodes the partner serves.
func (c *Client) ServiceAreas(ctx context.Context) ([]domain.ServiceArea, error) {
	var out []domain.ServiceArea
	if err := c.private(ctx, http.MethodGet, "/partner/service-areas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddServiceAreaRequest registers a pincode.
type AddServiceAreaRequest struct {
	Pincode string `json:"pincode"`
	City    string `json:"city,omitempty"`
}

// AddServiceArea registers a pincode the partner serves.
func (c *Client) AddServiceArea(ctx context.Context, req AddServiceAreaRequest) (*domain.ServiceArea, error) {
	var out domain.ServiceArea
	if err := c.private(ctx, http.MethodPost, "/partner/service-areas", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteServiceArea removes a pincode.
func (c *Client) DeleteServiceArea(ctx context.Context, areaID string) error {
	return c.private(ctx, http.MethodDelete, fmt.Sprintf("/partner/service-areas/%s", areaID), nil, nil)
}
