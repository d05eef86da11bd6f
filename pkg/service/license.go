package service

import (
	"context"
	"time"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
)

// LicenseRepository stores licenses.
type LicenseRepository = Repository[domain.License, domain.LicensePatch, domain.LicenseFilter]

// LicenseService manages driver licenses.
type LicenseService struct {
	*Resource[domain.License, domain.LicensePatch, domain.LicenseFilter]
}

// NewLicenseService returns a license service over repo.
func NewLicenseService(repo LicenseRepository, opts ...Option) *LicenseService {
	return &LicenseService{NewResource(domain.ResourceLicenses, repo, ValidateLicense, opts...)}
}

func (s *LicenseService) transition(ctx context.Context, id string, to domain.LicenseStatus, patch domain.LicensePatch) (domain.License, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.License{}, err
	}
	from := domain.EffectiveStatus(current, s.now())
	if !domain.CanTransition(from, to) {
		return domain.License{}, &apperr.InvalidTransitionError{Resource: domain.ResourceLicenses, From: string(from), To: string(to)}
	}
	patch.Status = &to
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return updated, err
	}
	s.log.Info("license status changed", "id", id, "from", from, "to", to)
	return updated, nil
}

// Approve activates a pending license.
func (s *LicenseService) Approve(ctx context.Context, id string) (domain.License, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionApprove)
	}
	return s.transition(ctx, id, domain.LicenseActive, domain.LicensePatch{})
}

// Renew reactivates an expired (or expiring) license with a fresh validity
// period starting today.
func (s *LicenseService) Renew(ctx context.Context, id string) (domain.License, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionRenew)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.License{}, err
	}
	now := s.now()
	issue := domain.StartOfDay(now)
	expiry := domain.RenewalExpiry(now)
	patch := domain.LicensePatch{IssueDate: &issue, ExpiryDate: &expiry}

	// An active license can be renewed ahead of expiry without a status change.
	if current.Status == domain.LicenseActive && !domain.IsExpired(current, now) {
		updated, err := s.repo.Update(ctx, id, patch)
		if err != nil {
			return updated, err
		}
		s.log.Info("license renewed", "id", id, "expiry", expiry)
		return updated, nil
	}
	if from := domain.EffectiveStatus(current, now); from != domain.LicenseExpired {
		return domain.License{}, &apperr.InvalidTransitionError{Resource: domain.ResourceLicenses, From: string(from), To: string(domain.LicenseActive)}
	}
	return s.transition(ctx, id, domain.LicenseActive, patch)
}

// Suspend pauses an active license.
func (s *LicenseService) Suspend(ctx context.Context, id string) (domain.License, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionSuspend)
	}
	return s.transition(ctx, id, domain.LicensePaused, domain.LicensePatch{})
}

// Reactivate lifts a suspension.
func (s *LicenseService) Reactivate(ctx context.Context, id string) (domain.License, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionReactivate)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.License{}, err
	}
	if current.Status != domain.LicensePaused {
		return domain.License{}, &apperr.InvalidTransitionError{Resource: domain.ResourceLicenses, From: string(current.Status), To: string(domain.LicenseActive)}
	}
	return s.transition(ctx, id, domain.LicenseActive, domain.LicensePatch{})
}

// Revoke permanently withdraws a license.
func (s *LicenseService) Revoke(ctx context.Context, id string) (domain.License, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionRevoke)
	}
	zero := 0
	return s.transition(ctx, id, domain.LicenseRevoked, domain.LicensePatch{Points: &zero})
}

// Expiring returns the licenses that are still valid but expire within the
// warning window.
func (s *LicenseService) Expiring(ctx context.Context) ([]domain.License, error) {
	all, err := s.repo.List(ctx, domain.LicenseFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []domain.License
	for _, l := range all {
		if domain.IsExpiringSoon(l, now) {
			out = append(out, l)
		}
	}
	return out, nil
}

// LicenseStats summarises the license register.
type LicenseStats struct {
	Total        int                          `json:"total"`
	ByStatus     map[domain.LicenseStatus]int `json:"by_status"`
	ByType       map[string]int               `json:"by_type"`
	ExpiringSoon int                          `json:"expiring_soon"`
	AsOf         time.Time                    `json:"as_of"`
}

// Stats counts licenses by effective status and class.
func (s *LicenseService) Stats(ctx context.Context) (LicenseStats, error) {
	all, err := s.repo.List(ctx, domain.LicenseFilter{})
	if err != nil {
		return LicenseStats{}, err
	}
	now := s.now()
	st := LicenseStats{
		Total:    len(all),
		ByStatus: map[domain.LicenseStatus]int{},
		ByType:   map[string]int{},
		AsOf:     now,
	}
	for _, l := range all {
		st.ByStatus[domain.EffectiveStatus(l, now)]++
		st.ByType[l.LicenseType]++
		if domain.IsExpiringSoon(l, now) {
			st.ExpiringSoon++
		}
	}
	return st, nil
}
