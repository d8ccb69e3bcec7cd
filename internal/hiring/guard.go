package hiring

import (
	"context"

	"talentbase.org/internal/auth"
)

// Actor is the result of resolving a token without a required role: exactly
// one of Candidate or Organization is set, matching the role claim.
type Actor struct {
	Identity     auth.Identity
	Candidate    *Candidate
	Organization *Organization
}

// ResolveCandidate verifies the token, requires the candidate role and then
// loads the principal. The order is fixed: signature and expiry first, role
// claim second, store lookup last, so an attacker cannot learn from timing
// whether an id was valid before the role check rejected it.
func (s *Service) ResolveCandidate(ctx context.Context, token string) (*Candidate, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if id.Role != auth.RoleCandidate {
		return nil, auth.ErrForbiddenRole
	}
	return s.store.Candidates(ctx).Find(ctx, id.SubjectID)
}

// ResolveOrganization verifies the token, requires the organization role and
// then loads the principal.
func (s *Service) ResolveOrganization(ctx context.Context, token string) (*Organization, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if id.Role != auth.RoleOrganization {
		return nil, auth.ErrForbiddenRole
	}
	return s.store.Organizations(ctx).Find(ctx, id.SubjectID)
}

// Resolve verifies the token and loads whichever actor record the role claim
// names, without requiring a particular role.
func (s *Service) Resolve(ctx context.Context, token string) (*Actor, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	actor := &Actor{Identity: id}
	switch id.Role {
	case auth.RoleCandidate:
		cand, err := s.store.Candidates(ctx).Find(ctx, id.SubjectID)
		if err != nil {
			return nil, err
		}
		actor.Candidate = cand
	case auth.RoleOrganization:
		org, err := s.store.Organizations(ctx).Find(ctx, id.SubjectID)
		if err != nil {
			return nil, err
		}
		actor.Organization = org
	default:
		return nil, auth.ErrInvalidToken
	}
	return actor, nil
}
