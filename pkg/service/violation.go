package service

import (
	"context"
	"time"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
)

// ViolationRepository stores violations.
type ViolationRepository = Repository[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]

// ViolationService manages traffic violations.
type ViolationService struct {
	*Resource[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]
}

// NewViolationService returns a violation service over repo.
func NewViolationService(repo ViolationRepository, opts ...Option) *ViolationService {
	return &ViolationService{NewResource(domain.ResourceViolations, repo, ValidateViolation, opts...)}
}

func unpaid(s domain.ViolationStatus) bool {
	return s == domain.ViolationPending || s == domain.ViolationOverdue
}

// Pay records payment of an outstanding fine.
func (s *ViolationService) Pay(ctx context.Context, id string) (domain.Violation, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionPay)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Violation{}, err
	}
	if !unpaid(current.Status) {
		return domain.Violation{}, &apperr.InvalidTransitionError{Resource: domain.ResourceViolations, From: string(current.Status), To: string(domain.ViolationPaid)}
	}
	now := s.now()
	status := domain.ViolationPaid
	updated, err := s.repo.Update(ctx, id, domain.ViolationPatch{Status: &status, PaidAt: &now})
	if err != nil {
		return updated, err
	}
	s.log.Info("violation paid", "id", id, "amount", current.FineAmount)
	return updated, nil
}

// Cancel withdraws an outstanding violation.
func (s *ViolationService) Cancel(ctx context.Context, id string) (domain.Violation, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionCancel)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Violation{}, err
	}
	if !unpaid(current.Status) {
		return domain.Violation{}, &apperr.InvalidTransitionError{Resource: domain.ResourceViolations, From: string(current.Status), To: string(domain.ViolationCancelled)}
	}
	status := domain.ViolationCancelled
	updated, err := s.repo.Update(ctx, id, domain.ViolationPatch{Status: &status})
	if err != nil {
		return updated, err
	}
	s.log.Info("violation cancelled", "id", id)
	return updated, nil
}

// MarkOverdue moves every pending violation past its due date to overdue
// and returns the records it changed.
func (s *ViolationService) MarkOverdue(ctx context.Context) ([]domain.Violation, error) {
	all, err := s.repo.List(ctx, domain.ViolationFilter{Status: string(domain.ViolationPending)})
	if err != nil {
		return nil, err
	}
	now := s.now()
	status := domain.ViolationOverdue
	var changed []domain.Violation
	for _, v := range all {
		if !domain.IsOverdue(v, now) {
			continue
		}
		updated, err := s.repo.Update(ctx, v.ID, domain.ViolationPatch{Status: &status})
		if err != nil {
			return changed, err
		}
		changed = append(changed, updated)
	}
	if len(changed) > 0 {
		s.log.Info("violations marked overdue", "count", len(changed))
	}
	return changed, nil
}

// ViolationStats summarises outstanding and collected fines.
type ViolationStats struct {
	Total       int                            `json:"total"`
	ByStatus    map[domain.ViolationStatus]int `json:"by_status"`
	BySeverity  map[domain.Severity]int        `json:"by_severity"`
	Overdue     int                            `json:"overdue"`
	Outstanding int64                          `json:"outstanding_amount"`
	Collected   int64                          `json:"collected_amount"`
	AsOf        time.Time                      `json:"as_of"`
}

// Stats totals violations and fine amounts.
func (s *ViolationService) Stats(ctx context.Context) (ViolationStats, error) {
	all, err := s.repo.List(ctx, domain.ViolationFilter{})
	if err != nil {
		return ViolationStats{}, err
	}
	now := s.now()
	st := ViolationStats{
		Total:      len(all),
		ByStatus:   map[domain.ViolationStatus]int{},
		BySeverity: map[domain.Severity]int{},
		AsOf:       now,
	}
	for _, v := range all {
		st.ByStatus[v.Status]++
		st.BySeverity[domain.SeverityOf(v)]++
		switch {
		case v.Status == domain.ViolationPaid:
			st.Collected += v.FineAmount
		case unpaid(v.Status):
			st.Outstanding += v.FineAmount
		}
		if domain.IsOverdue(v, now) {
			st.Overdue++
		}
	}
	return st, nil
}
