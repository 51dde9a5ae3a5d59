package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/internal/session"
	"github.com/flipcashindia/fieldops/internal/store"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hitCounter tracks how many times the fake backend served each route.
type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func newHitCounter() *hitCounter {
	return &hitCounter{hits: make(map[string]int)}
}

func (h *hitCounter) inc(name string) {
	h.mu.Lock()
	h.hits[name]++
	h.mu.Unlock()
}

func (h *hitCounter) get(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[name]
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

// testEnv wires a fake backend, a seeded session and the orchestration
// service together the way cmd/fieldops does.
type testEnv struct {
	svc      *Service
	sessions *session.Manager
	views    *Invalidator
	client   *marketclient.Client
	creds    *store.MemoryStore
	hits     *hitCounter
}

func newTestEnv(t *testing.T, role domain.Role, register func(r chi.Router, hits *hitCounter)) *testEnv {
	t.Helper()

	hits := newHitCounter()
	r := chi.NewRouter()
	if register != nil {
		register(r, hits)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	creds := store.NewMemoryStore()
	ctx := context.Background()
	if role != "" {
		err := creds.SaveSession(ctx, &domain.Session{
			Tokens:   domain.TokenPair{Access: "access-token", Refresh: "refresh-token"},
			User:     domain.User{ID: "user-1", Phone: "+919000000001", Role: role, IsActive: true},
			DeviceID: "device-1",
			IssuedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
	}

	client := marketclient.NewClient(srv.URL)
	sessions, err := session.NewManager(ctx, client, creds, testLogger())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	views := NewInvalidator()
	svc := NewService(client, sessions, views, 10, testLogger())
	return &testEnv{svc: svc, sessions: sessions, views: views, client: client, creds: creds, hits: hits}
}

func sampleLead() domain.Lead {
	return domain.Lead{
		ID:             "lead-1",
		Status:         domain.StatusBooked,
		Device:         domain.Device{Category: "phone", Brand: "Samsung", Model: "Galaxy S21"},
		Customer:       domain.Customer{Name: "Asha", Phone: "+919000000002"},
		EstimatedPrice: 15000,
		ClaimFee:       8,
	}
}

func TestPreviewClaimComputesDeduction(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Get("/leads/lead-1", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, sampleLead())
		})
	})

	preview, err := env.svc.PreviewClaim(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("PreviewClaim failed: %v", err)
	}
	if preview.EstimatedPrice != 15000 || preview.ClaimFee != 8 {
		t.Fatalf("unexpected preview amounts: %+v", preview)
	}
	if preview.TotalDeduction != 15008 {
		t.Fatalf("expected total deduction 15008, got %d", preview.TotalDeduction)
	}
}

func TestConfirmAndClaimDeclinedIssuesNoClaim(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Get("/leads/lead-1", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, sampleLead())
		})
		r.Post("/leads/lead-1/claim", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("claim")
			writeJSON(t, w, domain.Assignment{ID: "asn-1", LeadID: "lead-1"})
		})
	})

	var shown *domain.ClaimPreview
	_, err := env.svc.ConfirmAndClaim(context.Background(), "lead-1", func(p domain.ClaimPreview) bool {
		shown = &p
		return false
	})
	if !errors.Is(err, ErrClaimCancelled) {
		t.Fatalf("expected ErrClaimCancelled, got %v", err)
	}
	if shown == nil || shown.TotalDeduction != 15008 {
		t.Fatalf("confirm callback did not receive the preview: %+v", shown)
	}
	if got := env.hits.get("claim"); got != 0 {
		t.Fatalf("expected no claim request after decline, backend saw %d", got)
	}
}

func TestConfirmAndClaimInvalidatesLeadList(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Get("/leads/available", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("list")
			writeJSON(t, w, []domain.Lead{sampleLead()})
		})
		r.Get("/leads/lead-1", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, sampleLead())
		})
		r.Post("/leads/lead-1/claim", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.Assignment{ID: "asn-1", LeadID: "lead-1", Status: domain.StatusPartnerAssigned})
		})
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.svc.AvailableLeads(ctx, marketclient.LeadListOptions{}); err != nil {
			t.Fatalf("AvailableLeads failed: %v", err)
		}
	}
	if got := env.hits.get("list"); got != 1 {
		t.Fatalf("expected cached second listing, backend saw %d requests", got)
	}

	assignment, err := env.svc.ConfirmAndClaim(ctx, "lead-1", func(domain.ClaimPreview) bool { return true })
	if err != nil {
		t.Fatalf("ConfirmAndClaim failed: %v", err)
	}
	if assignment.ID != "asn-1" {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}

	if _, err := env.svc.AvailableLeads(ctx, marketclient.LeadListOptions{}); err != nil {
		t.Fatalf("AvailableLeads after claim failed: %v", err)
	}
	if got := env.hits.get("list"); got != 2 {
		t.Fatalf("expected claim to invalidate the lead list, backend saw %d requests", got)
	}
}

func TestAssignmentsCachedUntilCommand(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Get("/agent/assignments", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("list")
			writeJSON(t, w, []domain.Assignment{{ID: "asn-1", Status: domain.StatusAssigned}})
		})
		r.Post("/agent/assignments/asn-1/accept", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusAccepted})
		})
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.svc.Assignments(ctx, marketclient.AssignmentListOptions{}); err != nil {
			t.Fatalf("Assignments failed: %v", err)
		}
	}
	if got := env.hits.get("list"); got != 1 {
		t.Fatalf("expected cached second listing, backend saw %d requests", got)
	}

	// Filtered listings bypass the cache.
	if _, err := env.svc.Assignments(ctx, marketclient.AssignmentListOptions{Status: domain.StatusAssigned}); err != nil {
		t.Fatalf("filtered Assignments failed: %v", err)
	}
	if got := env.hits.get("list"); got != 2 {
		t.Fatalf("expected filtered listing to hit the backend, saw %d requests", got)
	}

	if _, err := env.svc.AcceptAssignment(ctx, "asn-1"); err != nil {
		t.Fatalf("AcceptAssignment failed: %v", err)
	}
	if _, err := env.svc.Assignments(ctx, marketclient.AssignmentListOptions{}); err != nil {
		t.Fatalf("Assignments after accept failed: %v", err)
	}
	if got := env.hits.get("list"); got != 3 {
		t.Fatalf("expected accept to invalidate the assignment list, backend saw %d requests", got)
	}
}

func TestInspectionDraftLifecycle(t *testing.T) {
	var submitted marketclient.SubmitInspectionRequest
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Post("/agent/assignments/asn-1/inspection/start", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("start")
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusInspecting})
		})
		r.Post("/agent/assignments/asn-1/inspection/photos", func(w http.ResponseWriter, req *http.Request) {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("failed to parse multipart form: %v", err)
			}
			hits.inc("photo:" + req.FormValue("label"))
			w.WriteHeader(http.StatusCreated)
		})
		r.Post("/agent/assignments/asn-1/inspection/submit", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("submit")
			if err := json.NewDecoder(req.Body).Decode(&submitted); err != nil {
				t.Errorf("failed to decode submission: %v", err)
			}
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusInspecting, InspectionSubmitted: true})
		})
	})
	ctx := context.Background()

	if _, err := env.svc.BeginInspection(ctx, "asn-1"); err != nil {
		t.Fatalf("BeginInspection failed: %v", err)
	}
	// Re-entering keeps the draft and issues no second start.
	if _, err := env.svc.BeginInspection(ctx, "asn-1"); err != nil {
		t.Fatalf("re-entrant BeginInspection failed: %v", err)
	}
	if got := env.hits.get("start"); got != 1 {
		t.Fatalf("expected a single inspection start, backend saw %d", got)
	}

	if err := env.svc.RecordAnswer("asn-1", domain.ChecklistAnswer{QuestionID: "screen", Answer: "cracked", Deduction: 3000}); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	// Re-answering the same question replaces, not appends.
	if err := env.svc.RecordAnswer("asn-1", domain.ChecklistAnswer{QuestionID: "screen", Answer: "scratched", Deduction: 1000}); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if err := env.svc.AttachPhoto("asn-1", domain.InspectionPhoto{Label: "front", Filename: "front.jpg", Data: []byte("jpeg")}); err != nil {
		t.Fatalf("AttachPhoto failed: %v", err)
	}

	draft, ok := env.svc.Draft("asn-1")
	if !ok {
		t.Fatal("expected a draft before submission")
	}
	if len(draft.Answers) != 1 || draft.Answers[0].Answer != "scratched" {
		t.Fatalf("expected replaced answer, got %+v", draft.Answers)
	}
	if draft.TotalDeduction() != 1000 {
		t.Fatalf("expected total deduction 1000, got %d", draft.TotalDeduction())
	}

	if _, err := env.svc.SubmitInspection(ctx, "asn-1"); err != nil {
		t.Fatalf("SubmitInspection failed: %v", err)
	}
	if got := env.hits.get("photo:front"); got != 1 {
		t.Fatalf("expected the staged photo to upload once, backend saw %d", got)
	}
	if len(submitted.Answers) != 1 || submitted.Answers[0].QuestionID != "screen" {
		t.Fatalf("unexpected submitted answers: %+v", submitted.Answers)
	}
	if _, ok := env.svc.Draft("asn-1"); ok {
		t.Fatal("expected draft to be discarded after submission")
	}
}

func TestSubmitInspectionFailureKeepsDraft(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Post("/agent/assignments/asn-1/inspection/start", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusInspecting})
		})
		r.Post("/agent/assignments/asn-1/inspection/submit", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":"missing mandatory answers"}`))
		})
	})
	ctx := context.Background()

	if _, err := env.svc.BeginInspection(ctx, "asn-1"); err != nil {
		t.Fatalf("BeginInspection failed: %v", err)
	}
	if _, err := env.svc.SubmitInspection(ctx, "asn-1"); err == nil {
		t.Fatal("expected submission to fail")
	}
	if _, ok := env.svc.Draft("asn-1"); !ok {
		t.Fatal("expected draft to survive a failed submission")
	}
}

func TestInspectionOperationsWithoutDraft(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, nil)

	if err := env.svc.RecordAnswer("asn-1", domain.ChecklistAnswer{QuestionID: "q"}); !errors.Is(err, ErrNoInspectionDraft) {
		t.Fatalf("RecordAnswer: expected ErrNoInspectionDraft, got %v", err)
	}
	if err := env.svc.AttachPhoto("asn-1", domain.InspectionPhoto{Label: "front"}); !errors.Is(err, ErrNoInspectionDraft) {
		t.Fatalf("AttachPhoto: expected ErrNoInspectionDraft, got %v", err)
	}
	if _, err := env.svc.SubmitInspection(context.Background(), "asn-1"); !errors.Is(err, ErrNoInspectionDraft) {
		t.Fatalf("SubmitInspection: expected ErrNoInspectionDraft, got %v", err)
	}
}

func TestPriceBreakdownSeedsFinalPrice(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Post("/agent/assignments/asn-1/price/calculate", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, marketclient.CalculatePriceResult{
				OriginalPrice: 15000,
				Deductions:    []domain.Deduction{{Reason: "screen scratched", Amount: 2000}},
				ComputedPrice: 13000,
			})
		})
	})

	adj, err := env.svc.PriceBreakdown(context.Background(), "asn-1")
	if err != nil {
		t.Fatalf("PriceBreakdown failed: %v", err)
	}
	if adj.FinalPrice != 13000 {
		t.Fatalf("expected final price seeded with computed price 13000, got %d", adj.FinalPrice)
	}
	if adj.ComputedPrice() != 13000 {
		t.Fatalf("expected computed price 13000, got %d", adj.ComputedPrice())
	}

	if env.svc.DeviationWarning(*adj) {
		t.Fatal("unedited price should not warn")
	}
	adj.FinalPrice = 10000
	if !env.svc.DeviationWarning(*adj) {
		t.Fatal("expected deviation warning past the 10% limit")
	}
}

func TestCancelAssignmentDropsDraft(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Post("/agent/assignments/asn-1/inspection/start", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusInspecting})
		})
		r.Post("/agent/assignments/asn-1/cancel", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusCancelled})
		})
	})
	ctx := context.Background()

	if _, err := env.svc.BeginInspection(ctx, "asn-1"); err != nil {
		t.Fatalf("BeginInspection failed: %v", err)
	}
	if _, err := env.svc.CancelAssignment(ctx, "asn-1", "customer unavailable"); err != nil {
		t.Fatalf("CancelAssignment failed: %v", err)
	}
	if _, ok := env.svc.Draft("asn-1"); ok {
		t.Fatal("expected cancel to drop the draft")
	}
}

func TestDeleteBankAccountPrimaryRejected(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Get("/partner/bank-accounts", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, []domain.BankAccount{
				{ID: "acc-1", IsPrimary: true},
				{ID: "acc-2"},
			})
		})
		r.Delete("/partner/bank-accounts/{id}", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("delete:" + chi.URLParam(req, "id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	ctx := context.Background()

	if err := env.svc.DeleteBankAccount(ctx, "acc-1"); !errors.Is(err, ErrPrimaryBankAccount) {
		t.Fatalf("expected ErrPrimaryBankAccount, got %v", err)
	}
	if got := env.hits.get("delete:acc-1"); got != 0 {
		t.Fatalf("expected no delete request for the primary account, backend saw %d", got)
	}

	if err := env.svc.DeleteBankAccount(ctx, "acc-2"); err != nil {
		t.Fatalf("deleting a non-primary account failed: %v", err)
	}
	if got := env.hits.get("delete:acc-2"); got != 1 {
		t.Fatalf("expected the non-primary delete to go through, backend saw %d", got)
	}
}

func TestDeleteDocumentVerifiedRejected(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Get("/partner/documents", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, []domain.Document{
				{ID: "doc-1", Type: "aadhaar", Status: domain.DocumentVerified},
				{ID: "doc-2", Type: "pan", Status: domain.DocumentPending},
			})
		})
		r.Delete("/partner/documents/{id}", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("delete:" + chi.URLParam(req, "id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	ctx := context.Background()

	if err := env.svc.DeleteDocument(ctx, "doc-1"); !errors.Is(err, ErrDocumentVerified) {
		t.Fatalf("expected ErrDocumentVerified, got %v", err)
	}
	if got := env.hits.get("delete:doc-1"); got != 0 {
		t.Fatalf("expected no delete request for the verified document, backend saw %d", got)
	}

	if err := env.svc.DeleteDocument(ctx, "doc-2"); err != nil {
		t.Fatalf("deleting a pending document failed: %v", err)
	}
}

func TestCachedListingsReturnCopies(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Get("/leads/available", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, []domain.Lead{sampleLead()})
		})
		r.Get("/agent/assignments", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, []domain.Assignment{{ID: "asn-1", Status: domain.StatusAssigned}})
		})
	})
	ctx := context.Background()

	leads, err := env.svc.AvailableLeads(ctx, marketclient.LeadListOptions{})
	if err != nil {
		t.Fatalf("AvailableLeads failed: %v", err)
	}
	leads[0].ID = "scribbled"

	leads, err = env.svc.AvailableLeads(ctx, marketclient.LeadListOptions{})
	if err != nil {
		t.Fatalf("cached AvailableLeads failed: %v", err)
	}
	if leads[0].ID != "lead-1" {
		t.Fatalf("caller mutation leaked into the lead cache: %+v", leads[0])
	}

	assignments, err := env.svc.Assignments(ctx, marketclient.AssignmentListOptions{})
	if err != nil {
		t.Fatalf("Assignments failed: %v", err)
	}
	assignments[0].Status = domain.StatusCancelled

	assignments, err = env.svc.Assignments(ctx, marketclient.AssignmentListOptions{})
	if err != nil {
		t.Fatalf("cached Assignments failed: %v", err)
	}
	if assignments[0].Status != domain.StatusAssigned {
		t.Fatalf("caller mutation leaked into the assignment cache: %+v", assignments[0])
	}
}

func TestProfileCommandsInvalidatePartnerProfile(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Patch("/partner/profile", func(w http.ResponseWriter, req *http.Request) {
			var got marketclient.UpdatePartnerProfileRequest
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode profile update: %v", err)
			}
			writeJSON(t, w, domain.PartnerProfile{UserID: "user-1", BusinessName: got.BusinessName})
		})
		r.Post("/partner/service-areas", func(w http.ResponseWriter, req *http.Request) {
			var got marketclient.AddServiceAreaRequest
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode service area: %v", err)
			}
			writeJSON(t, w, domain.ServiceArea{ID: "area-1", Pincode: got.Pincode, City: got.City})
		})
		r.Delete("/partner/service-areas/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	var cleared int
	env.views.Register(ViewPartnerProfile, func() { cleared++ })
	ctx := context.Background()

	profile, err := env.svc.UpdatePartnerProfile(ctx, marketclient.UpdatePartnerProfileRequest{BusinessName: "GreenCycle Traders"})
	if err != nil {
		t.Fatalf("UpdatePartnerProfile failed: %v", err)
	}
	if profile.BusinessName != "GreenCycle Traders" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if cleared != 1 {
		t.Fatalf("expected the profile update to invalidate the profile view, cleared %d times", cleared)
	}

	area, err := env.svc.AddServiceArea(ctx, "560001", "Bengaluru")
	if err != nil {
		t.Fatalf("AddServiceArea failed: %v", err)
	}
	if area.Pincode != "560001" || area.City != "Bengaluru" {
		t.Fatalf("unexpected area: %+v", area)
	}
	if err := env.svc.DeleteServiceArea(ctx, "area-1"); err != nil {
		t.Fatalf("DeleteServiceArea failed: %v", err)
	}
	if cleared != 3 {
		t.Fatalf("expected each area change to invalidate the profile view, cleared %d times", cleared)
	}
}

func TestBankCommandsInvalidatePartnerProfile(t *testing.T) {
	env := newTestEnv(t, domain.RolePartner, func(r chi.Router, hits *hitCounter) {
		r.Post("/partner/bank-accounts/{id}/set-primary", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("set-primary:" + chi.URLParam(req, "id"))
			w.WriteHeader(http.StatusOK)
		})
		r.Post("/partner/bank-accounts/{id}/verify", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.BankAccount{ID: chi.URLParam(req, "id"), BankName: "HDFC", IsVerified: false})
		})
	})

	var cleared int
	env.views.Register(ViewPartnerProfile, func() { cleared++ })
	ctx := context.Background()

	if err := env.svc.SetPrimaryBankAccount(ctx, "acc-2"); err != nil {
		t.Fatalf("SetPrimaryBankAccount failed: %v", err)
	}
	if got := env.hits.get("set-primary:acc-2"); got != 1 {
		t.Fatalf("expected one set-primary request, backend saw %d", got)
	}

	account, err := env.svc.VerifyBankAccount(ctx, "acc-2")
	if err != nil {
		t.Fatalf("VerifyBankAccount failed: %v", err)
	}
	if account.ID != "acc-2" {
		t.Fatalf("unexpected account: %+v", account)
	}
	if cleared != 2 {
		t.Fatalf("expected each bank change to invalidate the profile view, cleared %d times", cleared)
	}
}

func TestLogoutClearsDraftsAndCaches(t *testing.T) {
	env := newTestEnv(t, domain.RoleAgent, func(r chi.Router, hits *hitCounter) {
		r.Post("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/agent/assignments", func(w http.ResponseWriter, req *http.Request) {
			hits.inc("list")
			writeJSON(t, w, []domain.Assignment{{ID: "asn-1"}})
		})
		r.Post("/agent/assignments/asn-1/inspection/start", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(t, w, domain.Assignment{ID: "asn-1", Status: domain.StatusInspecting})
		})
	})
	ctx := context.Background()

	if _, err := env.svc.BeginInspection(ctx, "asn-1"); err != nil {
		t.Fatalf("BeginInspection failed: %v", err)
	}
	if _, err := env.svc.Assignments(ctx, marketclient.AssignmentListOptions{}); err != nil {
		t.Fatalf("Assignments failed: %v", err)
	}

	if err := env.sessions.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := env.svc.Draft("asn-1"); ok {
		t.Fatal("expected logout to discard drafts")
	}
}
