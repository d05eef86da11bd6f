package api

import "github.com/getmockd/regdesk/pkg/domain"

// Typed resource clients.
type (
	LicenseAPI   = Resource[domain.License, domain.LicensePatch, domain.LicenseFilter]
	VehicleAPI   = Resource[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]
	ViolationAPI = Resource[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]
	AuthorityAPI = Resource[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]
	NewsAPI      = Resource[domain.News, domain.NewsPatch, domain.NewsFilter]
)

// Modules bundles the per-resource clients over one Client.
type Modules struct {
	Client      *Client
	Licenses    *LicenseAPI
	Vehicles    *VehicleAPI
	Violations  *ViolationAPI
	Authorities *AuthorityAPI
	News        *NewsAPI
	Auth        *Auth
	Events      *Events
}

// NewModules builds every module over c.
func NewModules(c *Client) *Modules {
	return &Modules{
		Client:      c,
		Licenses:    NewResource[domain.License, domain.LicensePatch, domain.LicenseFilter](c, domain.ResourceLicenses),
		Vehicles:    NewResource[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter](c, domain.ResourceVehicles),
		Violations:  NewResource[domain.Violation, domain.ViolationPatch, domain.ViolationFilter](c, domain.ResourceViolations),
		Authorities: NewResource[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter](c, domain.ResourceAuthorities),
		News:        NewResource[domain.News, domain.NewsPatch, domain.NewsFilter](c, domain.ResourceNews),
		Auth:        &Auth{c: c},
		Events:      &Events{c: c},
	}
}
