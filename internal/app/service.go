/**
 * @description
 * This file contains the orchestration layer for the field client. The
 * Service struct composes the API client, the session manager and the cache
 * invalidation dispatcher, and implements the user-facing flows: claiming
 * leads with a wallet-deduction preview, the visit workflow actions, the
 * inspection draft lifecycle, pricing, and profile/finance management.
 *
 * Every action call is a single request with no automatic retry (beyond the
 * transport's one-shot auth replay); on failure the server's message is
 * surfaced and the caller's screen stays active so the action can be retried
 * manually. Client-side pre-checks (primary bank account, verified document)
 * are defensive UX only — the server remains authoritative.
 *
 * @dependencies
 * - internal/domain, internal/session, pkg/marketclient.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/internal/session"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

var (
	// ErrClaimCancelled is returned when the operator declines the wallet
	// deduction preview; no claim request is issued in that case.
	ErrClaimCancelled = errors.New("claim cancelled")
	// ErrPrimaryBankAccount rejects deleting the primary payout account.
	ErrPrimaryBankAccount = errors.New("cannot delete primary bank account")
	// ErrDocumentVerified rejects deleting an already verified document.
	ErrDocumentVerified = errors.New("cannot delete verified document")
	// ErrNoInspectionDraft is returned when an inspection operation runs
	// without a started draft.
	ErrNoInspectionDraft = errors.New("no inspection in progress")
)

// Service orchestrates the field-operations flows.
type Service struct {
	client   *marketclient.Client
	sessions *session.Manager
	views    *Invalidator
	logger   *slog.Logger

	deviationLimitPct float64

	draftMu sync.Mutex
	drafts  map[string]*domain.InspectionDraft

	leadMu         sync.Mutex
	availableLeads []domain.Lead
	leadsValid     bool

	asnMu       sync.Mutex
	assignments []domain.Assignment
	asnValid    bool
}

// NewService creates the orchestration service and registers its list
// caches with the invalidation dispatcher.
func NewService(client *marketclient.Client, sessions *session.Manager, views *Invalidator, deviationLimitPct float64, logger *slog.Logger) *Service {
	s := &Service{
		client:            client,
		sessions:          sessions,
		views:             views,
		logger:            logger,
		deviationLimitPct: deviationLimitPct,
		drafts:            make(map[string]*domain.InspectionDraft),
	}

	views.Register(ViewAvailableLeads, func() {
		s.leadMu.Lock()
		s.leadsValid = false
		s.availableLeads = nil
		s.leadMu.Unlock()
	})
	views.Register(ViewMyAssignments, func() {
		s.asnMu.Lock()
		s.asnValid = false
		s.assignments = nil
		s.asnMu.Unlock()
	})

	// Drafts are session-scoped; a logout throws away any half-finished
	// inspection input.
	sessions.Subscribe(func(e session.Event) {
		if e.Type == session.EventLogout {
			s.draftMu.Lock()
			s.drafts = make(map[string]*domain.InspectionDraft)
			s.draftMu.Unlock()
			s.views.Invalidate(ViewAvailableLeads, ViewMyAssignments)
		}
	})

	return s
}

// AvailableLeads lists unclaimed leads, serving the cached view until a
// command invalidates it.
func (s *Service) AvailableLeads(ctx context.Context, opts marketclient.LeadListOptions) ([]domain.Lead, error) {
	s.leadMu.Lock()
	if s.leadsValid {
		cached := append([]domain.Lead(nil), s.availableLeads...)
		s.leadMu.Unlock()
		return cached, nil
	}
	s.leadMu.Unlock()

	leads, err := s.client.AvailableLeads(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.leadMu.Lock()
	s.availableLeads = append([]domain.Lead(nil), leads...)
	s.leadsValid = true
	s.leadMu.Unlock()
	return leads, nil
}

// Assignments lists the operator's assignments, serving the cached view
// until a command invalidates it.
func (s *Service) Assignments(ctx context.Context, opts marketclient.AssignmentListOptions) ([]domain.Assignment, error) {
	s.asnMu.Lock()
	if s.asnValid && opts.Status == "" {
		cached := append([]domain.Assignment(nil), s.assignments...)
		s.asnMu.Unlock()
		return cached, nil
	}
	s.asnMu.Unlock()

	assignments, err := s.client.Assignments(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.Status == "" {
		s.asnMu.Lock()
		s.assignments = append([]domain.Assignment(nil), assignments...)
		s.asnValid = true
		s.asnMu.Unlock()
	}
	return assignments, nil
}

// Assignment fetches a fresh assignment snapshot.
func (s *Service) Assignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return s.client.Assignment(ctx, assignmentID)
}

// PreviewClaim fetches the lead and computes the wallet deduction the
// operator must confirm before the claim is issued.
func (s *Service) PreviewClaim(ctx context.Context, leadID string) (*domain.ClaimPreview, error) {
	lead, err := s.client.Lead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	preview := domain.NewClaimPreview(*lead)
	return &preview, nil
}

// ConfirmAndClaim shows the deduction preview through confirm and claims the
// lead only on approval. Declining issues no claim request.
func (s *Service) ConfirmAndClaim(ctx context.Context, leadID string, confirm func(domain.ClaimPreview) bool) (*domain.Assignment, error) {
	preview, err := s.PreviewClaim(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if confirm != nil && !confirm(*preview) {
		return nil, ErrClaimCancelled
	}

	assignment, err := s.client.ClaimLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lead claimed", "lead_id", leadID, "assignment_id", assignment.ID, "deduction", preview.TotalDeduction)
	s.views.CommandDone("claim_lead")
	return assignment, nil
}

// CreateOffer submits a price offer for a claimed lead.
func (s *Service) CreateOffer(ctx context.Context, leadID string, price int64, notes string) (*domain.Assignment, error) {
	assignment, err := s.client.CreateOffer(ctx, leadID, marketclient.CreateOfferRequest{Price: price, Notes: notes})
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("create_offer")
	return assignment, nil
}

// ActivityLogs fetches the action trail for an assignment.
func (s *Service) ActivityLogs(ctx context.Context, assignmentID string) ([]domain.ActivityLog, error) {
	return s.client.ActivityLogs(ctx, assignmentID)
}

// AcceptAssignment accepts a newly assigned lead.
func (s *Service) AcceptAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	assignment, err := s.client.AcceptAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("accept_assignment")
	return assignment, nil
}

// RejectAssignment rejects a newly assigned lead.
func (s *Service) RejectAssignment(ctx context.Context, assignmentID, reason string) (*domain.Assignment, error) {
	assignment, err := s.client.RejectAssignment(ctx, assignmentID, marketclient.RejectAssignmentRequest{Reason: reason})
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("reject_assignment")
	return assignment, nil
}

// StartJourney marks the operator en route.
func (s *Service) StartJourney(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	assignment, err := s.client.StartJourney(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("start_journey")
	return assignment, nil
}

// CheckIn records arrival with the captured geolocation fix.
func (s *Service) CheckIn(ctx context.Context, assignmentID string, pos domain.Position) (*domain.Assignment, error) {
	assignment, err := s.client.AgentCheckIn(ctx, assignmentID, marketclient.CheckInRequest{Position: pos})
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("check_in")
	return assignment, nil
}

// VerifyCode validates the customer's visit code.
func (s *Service) VerifyCode(ctx context.Context, assignmentID, code string) (*domain.Assignment, error) {
	assignment, err := s.client.AgentVerifyCode(ctx, assignmentID, marketclient.VerifyCodeRequest{Code: code})
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("verify_code")
	return assignment, nil
}

// BeginInspection moves the assignment into the inspecting state and opens a
// local draft. Re-entering an in-progress inspection keeps the draft.
func (s *Service) BeginInspection(ctx context.Context, assignmentID string) (*domain.InspectionDraft, error) {
	s.draftMu.Lock()
	if draft, ok := s.drafts[assignmentID]; ok {
		s.draftMu.Unlock()
		return draft, nil
	}
	s.draftMu.Unlock()

	if _, err := s.client.StartInspection(ctx, assignmentID); err != nil {
		return nil, err
	}

	draft := &domain.InspectionDraft{
		AssignmentID: assignmentID,
		StartedAt:    time.Now().UTC(),
	}
	s.draftMu.Lock()
	s.drafts[assignmentID] = draft
	s.draftMu.Unlock()

	s.views.CommandDone("start_inspection")
	return draft, nil
}

// Draft returns the in-progress inspection draft for an assignment.
func (s *Service) Draft(assignmentID string) (*domain.InspectionDraft, bool) {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	draft, ok := s.drafts[assignmentID]
	return draft, ok
}

// RecordAnswer stores a checklist answer on the draft.
func (s *Service) RecordAnswer(assignmentID string, answer domain.ChecklistAnswer) error {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	draft, ok := s.drafts[assignmentID]
	if !ok {
		return ErrNoInspectionDraft
	}
	draft.SetAnswer(answer)
	return nil
}

// SetInspectionNotes stores free-form notes on the draft.
func (s *Service) SetInspectionNotes(assignmentID, notes string) error {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	draft, ok := s.drafts[assignmentID]
	if !ok {
		return ErrNoInspectionDraft
	}
	draft.Notes = notes
	return nil
}

// AttachPhoto stages a captured image on the draft; photos upload on
// submission.
func (s *Service) AttachPhoto(assignmentID string, photo domain.InspectionPhoto) error {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	draft, ok := s.drafts[assignmentID]
	if !ok {
		return ErrNoInspectionDraft
	}
	draft.Photos = append(draft.Photos, photo)
	return nil
}

// DiscardInspection drops the local draft without submitting.
func (s *Service) DiscardInspection(assignmentID string) {
	s.draftMu.Lock()
	delete(s.drafts, assignmentID)
	s.draftMu.Unlock()
}

// SubmitInspection uploads staged photos, submits the checklist, and drops
// the draft on success. On failure the draft survives for manual retry.
func (s *Service) SubmitInspection(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	s.draftMu.Lock()
	draft, ok := s.drafts[assignmentID]
	s.draftMu.Unlock()
	if !ok {
		return nil, ErrNoInspectionDraft
	}

	for _, photo := range draft.Photos {
		file := marketclient.UploadFile{Name: photo.Filename, Content: photo.Data}
		if err := s.client.UploadInspectionPhoto(ctx, assignmentID, photo.Label, file); err != nil {
			return nil, fmt.Errorf("failed to upload photo %q: %w", photo.Label, err)
		}
	}

	assignment, err := s.client.SubmitInspection(ctx, assignmentID, marketclient.SubmitInspectionRequest{
		Answers:          draft.Answers,
		Notes:            draft.Notes,
		RecommendedPrice: draft.RecommendedPrice,
	})
	if err != nil {
		return nil, err
	}

	s.DiscardInspection(assignmentID)
	s.views.CommandDone("submit_inspection")
	return assignment, nil
}

// PriceBreakdown asks the server to price the inspected device from the
// draft answers and returns an editable adjustment seeded with the computed
// price.
func (s *Service) PriceBreakdown(ctx context.Context, assignmentID string) (*domain.PriceAdjustment, error) {
	s.draftMu.Lock()
	draft, ok := s.drafts[assignmentID]
	s.draftMu.Unlock()

	var answers []domain.ChecklistAnswer
	if ok {
		answers = draft.Answers
	}

	result, err := s.client.CalculatePrice(ctx, assignmentID, marketclient.CalculatePriceRequest{Answers: answers})
	if err != nil {
		return nil, err
	}
	return &domain.PriceAdjustment{
		OriginalPrice: result.OriginalPrice,
		Deductions:    result.Deductions,
		FinalPrice:    result.ComputedPrice,
	}, nil
}

// DeviationWarning reports whether the final price strays past the
// configured advisory limit. It never blocks submission.
func (s *Service) DeviationWarning(adj domain.PriceAdjustment) bool {
	return adj.DeviationExceeds(s.deviationLimitPct)
}

// SubmitFinalPrice submits the final offer price.
func (s *Service) SubmitFinalPrice(ctx context.Context, assignmentID string, adj domain.PriceAdjustment, notes string) (*domain.Assignment, error) {
	if s.DeviationWarning(adj) {
		s.logger.Warn("final price deviates past advisory limit",
			"assignment_id", assignmentID,
			"computed", adj.ComputedPrice(),
			"final", adj.FinalPrice,
			"limit_pct", s.deviationLimitPct)
	}
	assignment, err := s.client.SubmitPrice(ctx, assignmentID, marketclient.SubmitPriceRequest{FinalPrice: adj.FinalPrice, Notes: notes})
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("submit_price")
	return assignment, nil
}

// CompleteDeal finalizes the trade-in.
func (s *Service) CompleteDeal(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	assignment, err := s.client.CompleteDeal(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("complete_deal")
	return assignment, nil
}

// CancelAssignment cancels an in-progress assignment and drops any local
// draft for it.
func (s *Service) CancelAssignment(ctx context.Context, assignmentID, reason string) (*domain.Assignment, error) {
	assignment, err := s.client.CancelAssignment(ctx, assignmentID, marketclient.CancelAssignmentRequest{Reason: reason})
	if err != nil {
		return nil, err
	}
	s.DiscardInspection(assignmentID)
	s.views.CommandDone("cancel_assignment")
	return assignment, nil
}

// DeleteBankAccount removes a payout account after the defensive primary
// check. The server enforces the same rule authoritatively.
func (s *Service) DeleteBankAccount(ctx context.Context, accountID string) error {
	accounts, err := s.client.BankAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if account.ID == accountID && account.IsPrimary {
			return ErrPrimaryBankAccount
		}
	}
	if err := s.client.DeleteBankAccount(ctx, accountID); err != nil {
		return err
	}
	s.views.CommandDone("bank_change")
	return nil
}

// DeleteDocument removes a KYC document after the defensive verified check.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	documents, err := s.client.Documents(ctx)
	if err != nil {
		return err
	}
	for _, doc := range documents {
		if doc.ID == documentID && doc.Status == domain.DocumentVerified {
			return ErrDocumentVerified
		}
	}
	if err := s.client.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	s.views.CommandDone("document_change")
	return nil
}

// UploadDocument submits a KYC document.
func (s *Service) UploadDocument(ctx context.Context, docType string, file marketclient.UploadFile) (*domain.Document, error) {
	doc, err := s.client.UploadDocument(ctx, docType, file)
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("document_change")
	return doc, nil
}

// UpdatePartnerProfile edits the partner business profile.
func (s *Service) UpdatePartnerProfile(ctx context.Context, req marketclient.UpdatePartnerProfileRequest) (*domain.PartnerProfile, error) {
	profile, err := s.client.UpdatePartnerProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("update_profile")
	return profile, nil
}

// BankAccounts lists the partner's payout accounts.
func (s *Service) BankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	return s.client.BankAccounts(ctx)
}

// SetPrimaryBankAccount marks an account as the payout default.
func (s *Service) SetPrimaryBankAccount(ctx context.Context, accountID string) error {
	if err := s.client.SetPrimaryBankAccount(ctx, accountID); err != nil {
		return err
	}
	s.views.CommandDone("bank_change")
	return nil
}

// VerifyBankAccount starts penny-drop verification for an account.
func (s *Service) VerifyBankAccount(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	account, err := s.client.VerifyBankAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("bank_change")
	return account, nil
}

// ServiceAreas lists the pincodes the partner serves.
func (s *Service) ServiceAreas(ctx context.Context) ([]domain.ServiceArea, error) {
	return s.client.ServiceAreas(ctx)
}

// AddServiceArea registers a pincode the partner serves.
func (s *Service) AddServiceArea(ctx context.Context, pincode, city string) (*domain.ServiceArea, error) {
	area, err := s.client.AddServiceArea(ctx, marketclient.AddServiceAreaRequest{Pincode: pincode, City: city})
	if err != nil {
		return nil, err
	}
	s.views.CommandDone("area_change")
	return area, nil
}

// DeleteServiceArea removes a pincode.
func (s *Service) DeleteServiceArea(ctx context.Context, areaID string) error {
	if err := s.client.DeleteServiceArea(ctx, areaID); err != nil {
		return err
	}
	s.views.CommandDone("area_change")
	return nil
}

// MyLeads lists the partner's claimed leads.
func (s *Service) MyLeads(ctx context.Context, opts marketclient.LeadListOptions) ([]domain.Assignment, error) {
	return s.client.MyLeads(ctx, opts)
}

// UploadSignature attaches the customer's signature image to the deal.
func (s *Service) UploadSignature(ctx context.Context, assignmentID string, file marketclient.UploadFile) error {
	return s.client.UploadSignature(ctx, assignmentID, file)
}

// Transactions lists the wallet history.
func (s *Service) Transactions(ctx context.Context, opts marketclient.TransactionListOptions) ([]domain.WalletTransaction, error) {
	return s.client.Transactions(ctx, opts)
}
