package service

import "github.com/getmockd/regdesk/pkg/domain"

// AuthorityRepository stores authorities.
type AuthorityRepository = Repository[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]

// AuthorityService manages regulatory authorities.
type AuthorityService struct {
	*Resource[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]
}

// NewAuthorityService returns an authority service over repo.
func NewAuthorityService(repo AuthorityRepository, opts ...Option) *AuthorityService {
	return &AuthorityService{NewResource(domain.ResourceAuthorities, repo, ValidateAuthority, opts...)}
}
