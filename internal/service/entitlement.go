package service

import (
	"context"

	"github.com/gymboard/booking-service/internal/model"
)

// CanReserve answers whether the consumer's quota admits one more
// booking of the given type, without consuming anything.
func (s *Service) CanReserve(ctx context.Context, consumerID string, bt model.BookingType) (model.EntitlementDecision, error) {
	ents, err := s.repo.ListEntitlements(ctx, consumerID)
	if err != nil {
		return model.EntitlementDecision{}, err
	}
	return decide(ents, bt, model.Today()), nil
}

// Entitlements returns the consumer's balances together with a
// per-booking-type decision.
func (s *Service) Entitlements(ctx context.Context, consumerID string) (model.EntitlementSummary, error) {
	ents, err := s.repo.ListEntitlements(ctx, consumerID)
	if err != nil {
		return model.EntitlementSummary{}, err
	}
	today := model.Today()
	return model.EntitlementSummary{
		Balances: ents,
		Decisions: map[model.BookingType]model.EntitlementDecision{
			model.BookingGymVisit:  decide(ents, model.BookingGymVisit, today),
			model.BookingVideocall: decide(ents, model.BookingVideocall, today),
		},
	}, nil
}

// GrantEntitlement records a purchase or administrative grant. The kind
// is an explicit enum set at creation time, never inferred from a plan's
// display name.
func (s *Service) GrantEntitlement(ctx context.Context, req model.GrantEntitlementRequest) (model.Entitlement, error) {
	return s.repo.GrantEntitlement(ctx, model.Entitlement{
		ConsumerID:     req.ConsumerID,
		Kind:           req.Kind,
		RemainingCount: req.RemainingCount,
		PeriodEnd:      req.PeriodEnd,
	})
}

// decide sums usable balances across the kinds that can pay for the
// booking type. Any unbounded entitlement makes the answer yes with no
// finite remainder.
func decide(ents []model.Entitlement, bt model.BookingType, today model.Date) model.EntitlementDecision {
	kinds := make(map[model.EntitlementKind]struct{})
	for _, kind := range model.KindsFor(bt) {
		kinds[kind] = struct{}{}
	}

	total := 0
	unbounded := false
	for _, ent := range ents {
		if _, ok := kinds[ent.Kind]; !ok {
			continue
		}
		if !ent.Usable(today) {
			continue
		}
		if ent.RemainingCount == nil {
			unbounded = true
			continue
		}
		total += *ent.RemainingCount
	}

	if unbounded {
		return model.EntitlementDecision{Allowed: true}
	}
	if total > 0 {
		after := total - 1
		return model.EntitlementDecision{Allowed: true, RemainingAfter: &after}
	}
	return model.EntitlementDecision{Allowed: false}
}
