package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/emrekaraca/learnguard-backend/internal/dto"
	"github.com/emrekaraca/learnguard-backend/internal/models"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserStore struct {
	users    map[uuid.UUID]*models.User
	setCalls int
	setErr   error
	getErr   error
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserStore) GetByID(id uuid.UUID) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserStore) SetBlocked(id uuid.UUID, blocked bool) error {
	if s.setErr != nil {
		return s.setErr
	}
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsBlocked = blocked
	s.setCalls++
	return nil
}

// stubViolationStore keeps rows in memory and emulates the store's atomic
// record-count-block unit against the shared stubUserStore.
type stubViolationStore struct {
	users     *stubUserStore
	rows      []models.SecurityViolation
	recordErr error
}

func (s *stubViolationStore) RecordAndApply(v *models.SecurityViolation, threshold int) (int64, bool, error) {
	if s.recordErr != nil {
		return 0, false, s.recordErr
	}
	user, ok := s.users.users[v.UserID]
	if !ok {
		return 0, false, ErrUserNotFound
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	s.rows = append(s.rows, *v)

	count, _ := s.CountByUser(v.UserID)
	applied := false
	if count >= int64(threshold) && !user.IsBlocked {
		user.IsBlocked = true
		applied = true
	}
	return count, applied, nil
}

func (s *stubViolationStore) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	for _, row := range s.rows {
		if row.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *stubViolationStore) RecentByUser(userID uuid.UUID, limit int) ([]models.SecurityViolation, error) {
	var out []models.SecurityViolation
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rows[i].UserID == userID {
			out = append(out, s.rows[i])
		}
	}
	return out, nil
}

func (s *stubViolationStore) List(offset, limit int, userID *uuid.UUID) ([]models.SecurityViolation, int64, error) {
	var filtered []models.SecurityViolation
	for i := len(s.rows) - 1; i >= 0; i-- {
		row := s.rows[i]
		if userID != nil && row.UserID != *userID {
			continue
		}
		if u, ok := s.users.users[row.UserID]; ok {
			row.User = *u
		}
		filtered = append(filtered, row)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (s *stubViolationStore) OffenderSummaries() ([]dto.UserViolationSummary, error) {
	counts := make(map[uuid.UUID]int64)
	for _, row := range s.rows {
		counts[row.UserID]++
	}
	var out []dto.UserViolationSummary
	for id, count := range counts {
		u := s.users.users[id]
		out = append(out, dto.UserViolationSummary{
			UserID:         id,
			Email:          u.Email,
			Name:           u.Name,
			IsBlocked:      u.IsBlocked,
			ViolationCount: count,
		})
	}
	// count desc, insertion order is irrelevant for the tests below
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ViolationCount > out[i].ViolationCount {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(users ...*models.User) (*ViolationService, *stubUserStore, *stubViolationStore) {
	userStore := newStubUserStore(users...)
	violationStore := &stubViolationStore{users: userStore}
	return NewViolationService(userStore, violationStore, DefaultThreshold), userStore, violationStore
}

func regularUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "student@example.com", Name: "Student", Role: models.RoleUser}
}

func submitReq(kind string) *dto.SubmitViolationRequest {
	return &dto.SubmitViolationRequest{Type: kind, Description: "detected " + kind}
}

// ---------------------------------------------------------------------------
// Submission / blocking policy
// ---------------------------------------------------------------------------

func TestSubmit_BelowThresholdDoesNotBlock(t *testing.T) {
	user := regularUser()
	svc, userStore, _ := newTestService(user)

	for i := 1; i <= 2; i++ {
		resp, err := svc.Submit(user.ID, submitReq("CONTEXT_MENU"), "ua", "1.2.3.4")
		if err != nil {
			t.Fatalf("submit %d: unexpected error: %v", i, err)
		}
		if resp.ViolationCount != int64(i) {
			t.Errorf("submit %d: expected count %d, got %d", i, i, resp.ViolationCount)
		}
		if resp.ShouldBlock {
			t.Errorf("submit %d: shouldBlock must be false below threshold", i)
		}
	}
	if userStore.users[user.ID].IsBlocked {
		t.Errorf("user must not be blocked below threshold")
	}
}

func TestSubmit_ThirdViolationBlocks(t *testing.T) {
	user := regularUser()
	svc, userStore, _ := newTestService(user)

	var resp *dto.SubmitViolationResponse
	var err error
	kinds := []string{"CONTEXT_MENU", "COPY_PASTE", "DEVELOPER_TOOLS"}
	for _, kind := range kinds {
		resp, err = svc.Submit(user.ID, submitReq(kind), "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if resp.ViolationCount != 3 {
		t.Errorf("expected count 3, got %d", resp.ViolationCount)
	}
	if !resp.ShouldBlock {
		t.Errorf("third violation must set shouldBlock")
	}
	if resp.Threshold != DefaultThreshold {
		t.Errorf("expected threshold %d, got %d", DefaultThreshold, resp.Threshold)
	}
	if !userStore.users[user.ID].IsBlocked {
		t.Errorf("user must be blocked at threshold")
	}
}

func TestSubmit_AdminAccountsAreExempt(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
	svc, _, violationStore := newTestService(admin)

	_, err := svc.Submit(admin.ID, submitReq("COPY_PASTE"), "", "")
	if !errors.Is(err, ErrAdminExempt) {
		t.Fatalf("expected ErrAdminExempt, got %v", err)
	}
	if len(violationStore.rows) != 0 {
		t.Errorf("no row must be written for an admin submission")
	}
}

func TestSubmit_BlockedAccountRejected(t *testing.T) {
	user := regularUser()
	user.IsBlocked = true
	svc, _, violationStore := newTestService(user)

	_, err := svc.Submit(user.ID, submitReq("SCREENSHOT"), "", "")
	if !errors.Is(err, ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}
	if len(violationStore.rows) != 0 {
		t.Errorf("no row must be written for a blocked account")
	}
}

func TestSubmit_Validation(t *testing.T) {
	user := regularUser()
	svc, _, violationStore := newTestService(user)

	cases := []struct {
		name string
		req  *dto.SubmitViolationRequest
		want error
	}{
		{"unknown kind", &dto.SubmitViolationRequest{Type: "TAB_SWITCH", Description: "x"}, ErrInvalidKind},
		{"empty description", &dto.SubmitViolationRequest{Type: "COPY_PASTE", Description: "   "}, ErrInvalidDescription},
		{"oversized description", &dto.SubmitViolationRequest{Type: "COPY_PASTE", Description: string(make([]byte, 501))}, ErrInvalidDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(user.ID, tc.req, "", "")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(violationStore.rows) != 0 {
		t.Errorf("validation failures must not write rows")
	}
}

func TestSubmit_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Submit(uuid.New(), submitReq("COPY_PASTE"), "", "")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Unblock / block
// ---------------------------------------------------------------------------

func TestUnblock_HappyPath(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	user := regularUser()
	user.IsBlocked = true
	svc, userStore, _ := newTestService(admin, user)

	updated, err := svc.Unblock(admin.ID, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsBlocked {
		t.Errorf("returned user must be unblocked")
	}
	if userStore.users[user.ID].IsBlocked {
		t.Errorf("stored user must be unblocked")
	}
}

func TestUnblock_NotBlockedFails(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	user := regularUser()
	svc, userStore, _ := newTestService(admin, user)

	_, err := svc.Unblock(admin.ID, user.ID)
	if !errors.Is(err, ErrNotBlocked) {
		t.Fatalf("expected ErrNotBlocked, got %v", err)
	}
	if userStore.setCalls != 0 {
		t.Errorf("no write must happen on a domain-rule failure")
	}
}

func TestUnblock_UnknownUser(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	svc, _, _ := newTestService(admin)

	_, err := svc.Unblock(admin.ID, uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUnblock_SelfTargetRejected(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin, IsBlocked: true}
	svc, _, _ := newTestService(admin)

	_, err := svc.Unblock(admin.ID, admin.ID)
	if !errors.Is(err, ErrSelfTarget) {
		t.Fatalf("expected ErrSelfTarget, got %v", err)
	}
}

func TestBlock_AlreadyBlockedFails(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	user := regularUser()
	user.IsBlocked = true
	svc, _, _ := newTestService(admin, user)

	_, err := svc.Block(admin.ID, user.ID)
	if !errors.Is(err, ErrAlreadyBlocked) {
		t.Fatalf("expected ErrAlreadyBlocked, got %v", err)
	}
}

// Unblock clears only the flag; the violation history stays, so the next
// violation trips the threshold again immediately.
func TestUnblock_DoesNotClearHistory(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	user := regularUser()
	svc, userStore, _ := newTestService(admin, user)

	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(user.ID, submitReq("COPY_PASTE"), "", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if !userStore.users[user.ID].IsBlocked {
		t.Fatalf("user must be auto-blocked")
	}

	if _, err := svc.Unblock(admin.ID, user.ID); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}

	resp, err := svc.Submit(user.ID, submitReq("SCREENSHOT"), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ViolationCount != 4 {
		t.Errorf("expected cumulative count 4, got %d", resp.ViolationCount)
	}
	if !resp.ShouldBlock {
		t.Errorf("count above threshold must set shouldBlock again")
	}
	if !userStore.users[user.ID].IsBlocked {
		t.Errorf("user must be re-blocked by the new violation")
	}
}

// ---------------------------------------------------------------------------
// Summaries and listing
// ---------------------------------------------------------------------------

func TestOwnSummary_RecencyCapAndNearThreshold(t *testing.T) {
	user := regularUser()
	svc, _, violationStore := newTestService(user)

	resp, err := svc.OwnSummary(user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ViolationCount != 0 || resp.IsNearThreshold {
		t.Errorf("fresh user: expected zero count and no near-threshold flag")
	}

	if _, err := svc.Submit(user.ID, submitReq("COPY_PASTE"), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(user.ID, submitReq("CONTEXT_MENU"), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err = svc.OwnSummary(user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ViolationCount != 2 {
		t.Errorf("expected count 2, got %d", resp.ViolationCount)
	}
	if !resp.IsNearThreshold {
		t.Errorf("count of threshold-1 must flag near-threshold")
	}

	// 10-row recency cap
	for i := 0; i < 12; i++ {
		violationStore.rows = append(violationStore.rows, models.SecurityViolation{
			ID: uuid.New(), UserID: user.ID, Kind: models.ViolationCopyPaste,
			Description: fmt.Sprintf("event %d", i), CreatedAt: time.Now(),
		})
	}
	resp, err = svc.OwnSummary(user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.RecentViolations) != 10 {
		t.Errorf("expected 10 recent violations, got %d", len(resp.RecentViolations))
	}
	if resp.RecentViolations[0].Description != "event 11" {
		t.Errorf("recent violations must be newest-first, got %q first", resp.RecentViolations[0].Description)
	}
}

func TestList_FilterPaginationAndOrder(t *testing.T) {
	alice := regularUser()
	bob := &models.User{ID: uuid.New(), Email: "bob@example.com", Name: "Bob", Role: models.RoleUser}
	svc, _, _ := newTestService(alice, bob)

	if _, err := svc.Submit(alice.ID, submitReq("COPY_PASTE"), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(bob.ID, submitReq("CONTEXT_MENU"), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(alice.ID, submitReq("SCREENSHOT"), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := svc.List(1, 20, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.Pagination.TotalCount != 3 || all.Pagination.TotalPages != 1 {
		t.Errorf("unexpected pagination: %+v", all.Pagination)
	}
	if all.Violations[0].Type != models.ViolationScreenshot {
		t.Errorf("feed must be newest-first, got %s first", all.Violations[0].Type)
	}
	if all.Violations[0].User.Email != alice.Email {
		t.Errorf("entries must embed the owning user")
	}

	filtered, err := svc.List(1, 20, &alice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filtered.Pagination.TotalCount != 2 {
		t.Errorf("expected 2 rows for alice, got %d", filtered.Pagination.TotalCount)
	}
	for _, v := range filtered.Violations {
		if v.User.ID != alice.ID {
			t.Errorf("filter leaked a foreign row: %+v", v)
		}
	}

	paged, err := svc.List(2, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paged.Violations) != 1 || paged.Pagination.TotalPages != 2 {
		t.Errorf("unexpected second page: %d rows, %d pages", len(paged.Violations), paged.Pagination.TotalPages)
	}
}

func TestOffenderSummaries_SortedByCount(t *testing.T) {
	alice := regularUser()
	bob := &models.User{ID: uuid.New(), Email: "bob@example.com", Role: models.RoleUser}
	svc, _, _ := newTestService(alice, bob)

	if _, err := svc.Submit(bob.ID, submitReq("COPY_PASTE"), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(alice.ID, submitReq("CONTEXT_MENU"), "", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	summaries, err := svc.OffenderSummaries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].UserID != alice.ID || summaries[0].ViolationCount != 2 {
		t.Errorf("heaviest offender must come first: %+v", summaries[0])
	}
}
