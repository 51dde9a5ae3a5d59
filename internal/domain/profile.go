/**
 * @description
 * Role-specific profile and finance models: partner business profile, agent
 * field profile, KYC documents, bank accounts, service areas and wallet
 * transactions. All are server-owned; the client holds read-mostly copies.
 */

package domain

import "time"

// DocumentStatus is the KYC review state of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is a KYC document uploaded by a partner or agent.
type Document struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	FileURL    string         `json:"file_url"`
	Status     DocumentStatus `json:"status"`
	Reason     *string        `json:"reason,omitempty"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// BankAccount is a payout destination registered by a partner.
type BankAccount struct {
	ID            string `json:"id"`
	HolderName    string `json:"holder_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
	IsPrimary     bool   `json:"is_primary"`
	IsVerified    bool   `json:"is_verified"`
}

// ServiceArea is a pincode a partner serves.
type ServiceArea struct {
	ID      string `json:"id"`
	Pincode string `json:"pincode"`
	City    string `json:"city"`
}

// PartnerProfile is the partner's business profile.
type PartnerProfile struct {
	UserID        string        `json:"user_id"`
	BusinessName  string        `json:"business_name"`
	GSTIN         string        `json:"gstin,omitempty"`
	KYCComplete   bool          `json:"kyc_complete"`
	Available     bool          `json:"available"`
	WalletBalance int64         `json:"wallet_balance"`
	ServiceAreas  []ServiceArea `json:"service_areas,omitempty"`
}

// AgentProfile is the field agent's operational profile.
type AgentProfile struct {
	UserID          string `json:"user_id"`
	PartnerID       string `json:"partner_id"`
	Available       bool   `json:"available"`
	ActiveVisits    int    `json:"active_visits"`
	CompletedVisits int    `json:"completed_visits"`
}

// TransactionType distinguishes wallet credits from debits.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// WalletTransaction is one row of the partner wallet history.
type WalletTransaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      int64           `json:"amount"`
	Balance     int64           `json:"balance"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
