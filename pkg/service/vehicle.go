package service

import (
	"context"
	"time"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
)

// VehicleRepository stores vehicles.
type VehicleRepository = Repository[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]

// VehicleService manages vehicle registrations.
type VehicleService struct {
	*Resource[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]
}

// NewVehicleService returns a vehicle service over repo.
func NewVehicleService(repo VehicleRepository, opts ...Option) *VehicleService {
	return &VehicleService{NewResource(domain.ResourceVehicles, repo, ValidateVehicle, opts...)}
}

func (s *VehicleService) transition(ctx context.Context, id string, to domain.VehicleStatus) (domain.Vehicle, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Vehicle{}, err
	}
	if !domain.CanTransitionVehicle(current.Status, to) {
		return domain.Vehicle{}, &apperr.InvalidTransitionError{Resource: domain.ResourceVehicles, From: string(current.Status), To: string(to)}
	}
	updated, err := s.repo.Update(ctx, id, domain.VehiclePatch{Status: &to})
	if err != nil {
		return updated, err
	}
	s.log.Info("vehicle status changed", "id", id, "from", current.Status, "to", to)
	return updated, nil
}

// Activate completes a pending registration or lifts a suspension.
func (s *VehicleService) Activate(ctx context.Context, id string) (domain.Vehicle, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionActivate)
	}
	return s.transition(ctx, id, domain.VehicleActive)
}

// Suspend suspends a registration.
func (s *VehicleService) Suspend(ctx context.Context, id string) (domain.Vehicle, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionSuspend)
	}
	return s.transition(ctx, id, domain.VehicleSuspended)
}

// Deregister removes a vehicle from circulation.
func (s *VehicleService) Deregister(ctx context.Context, id string) (domain.Vehicle, error) {
	if s.remote != nil {
		return s.remote.Action(ctx, id, domain.ActionDeregister)
	}
	return s.transition(ctx, id, domain.VehicleDeregistered)
}

// VehicleStats summarises the vehicle register.
type VehicleStats struct {
	Total         int                          `json:"total"`
	ByStatus      map[domain.VehicleStatus]int `json:"by_status"`
	ByType        map[string]int               `json:"by_type"`
	InspectionDue int                          `json:"inspection_due"`
	AsOf          time.Time                    `json:"as_of"`
}

// Stats counts vehicles by status and type.
func (s *VehicleService) Stats(ctx context.Context) (VehicleStats, error) {
	all, err := s.repo.List(ctx, domain.VehicleFilter{})
	if err != nil {
		return VehicleStats{}, err
	}
	now := s.now()
	st := VehicleStats{
		Total:    len(all),
		ByStatus: map[domain.VehicleStatus]int{},
		ByType:   map[string]int{},
		AsOf:     now,
	}
	for _, v := range all {
		st.ByStatus[v.Status]++
		st.ByType[v.VehicleType]++
		if v.Status == domain.VehicleActive && domain.IsInspectionDue(v, now) {
			st.InspectionDue++
		}
	}
	return st, nil
}
