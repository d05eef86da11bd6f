package store

import (
	"time"

	"github.com/getmockd/regdesk/internal/id"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/table"
)

// Typed collections, one per resource.
type (
	Licenses    = Collection[domain.License, domain.LicensePatch, domain.LicenseFilter]
	Vehicles    = Collection[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]
	Violations  = Collection[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]
	Authorities = Collection[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]
	NewsItems   = Collection[domain.News, domain.NewsPatch, domain.NewsFilter]
)

// contains is the full-text match: empty query matches everything.
func contains(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if table.Contains(f, query) {
			return true
		}
	}
	return false
}

// exact is the enumerated-value match: empty or "all" matches everything.
func exact(want, got string) bool {
	return want == "" || want == table.AllValue || table.EqualFold(want, got)
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// LicenseDescriptor describes licenses.
var LicenseDescriptor = Descriptor[domain.License, domain.LicensePatch, domain.LicenseFilter]{
	Resource: domain.ResourceLicenses,
	ID:       func(l domain.License) string { return l.ID },
	Prepare: func(l domain.License, now time.Time) domain.License {
		if l.ID == "" {
			l.ID = id.UUID()
		}
		if l.LicenseNumber == "" {
			l.LicenseNumber = id.Number(12)
		}
		if l.IssueDate.IsZero() {
			l.IssueDate = domain.StartOfDay(now)
		}
		if l.ExpiryDate.IsZero() {
			l.ExpiryDate = l.IssueDate.AddDate(domain.LicenseValidityYears, 0, 0)
		}
		if l.Status == "" {
			l.Status = domain.LicensePending
		}
		// A zero balance cannot be told apart from an omitted one here.
		if l.Points == 0 {
			l.Points = domain.LicenseFullPoints
		}
		if l.BlockchainTx == "" {
			l.BlockchainTx = id.TxHash()
		}
		stamp(&l.CreatedAt, &l.UpdatedAt, now)
		return l
	},
	Apply: func(l domain.License, p domain.LicensePatch, now time.Time) domain.License {
		l = p.Apply(l)
		l.UpdatedAt = now
		return l
	},
	Match: func(l domain.License, f domain.LicenseFilter) bool {
		return contains(f.Query, l.LicenseNumber, l.HolderName, l.HolderIDCard) &&
			exact(f.Status, string(l.Status)) &&
			exact(f.LicenseType, l.LicenseType) &&
			exact(f.City, l.City) &&
			exact(f.AuthorityID, l.AuthorityID)
	},
}

// VehicleDescriptor describes vehicles.
var VehicleDescriptor = Descriptor[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]{
	Resource: domain.ResourceVehicles,
	ID:       func(v domain.Vehicle) string { return v.ID },
	Prepare: func(v domain.Vehicle, now time.Time) domain.Vehicle {
		if v.ID == "" {
			v.ID = id.UUID()
		}
		if v.RegistrationDate.IsZero() {
			v.RegistrationDate = domain.StartOfDay(now)
		}
		if v.InspectionExpiry.IsZero() {
			v.InspectionExpiry = v.RegistrationDate.AddDate(0, domain.InspectionValidityMonths, 0)
		}
		if v.Status == "" {
			v.Status = domain.VehiclePending
		}
		if v.BlockchainTx == "" {
			v.BlockchainTx = id.TxHash()
		}
		stamp(&v.CreatedAt, &v.UpdatedAt, now)
		return v
	},
	Apply: func(v domain.Vehicle, p domain.VehiclePatch, now time.Time) domain.Vehicle {
		v = p.Apply(v)
		v.UpdatedAt = now
		return v
	},
	Match: func(v domain.Vehicle, f domain.VehicleFilter) bool {
		return contains(f.Query, v.PlateNumber, v.OwnerName, v.OwnerIDCard, v.Brand, v.Model) &&
			exact(f.Status, string(v.Status)) &&
			exact(f.VehicleType, v.VehicleType) &&
			exact(f.City, v.City) &&
			exact(f.Brand, v.Brand)
	},
}

// ViolationDescriptor describes violations.
var ViolationDescriptor = Descriptor[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]{
	Resource: domain.ResourceViolations,
	ID:       func(v domain.Violation) string { return v.ID },
	Prepare: func(v domain.Violation, now time.Time) domain.Violation {
		if v.ID == "" {
			v.ID = id.UUID()
		}
		if v.ViolationDate.IsZero() {
			v.ViolationDate = now
		}
		if v.DueDate.IsZero() {
			v.DueDate = domain.StartOfDay(v.ViolationDate).AddDate(0, 0, domain.PaymentWindowDays)
		}
		if v.Status == "" {
			v.Status = domain.ViolationPending
		}
		if v.BlockchainTx == "" {
			v.BlockchainTx = id.TxHash()
		}
		stamp(&v.CreatedAt, &v.UpdatedAt, now)
		return v
	},
	Apply: func(v domain.Violation, p domain.ViolationPatch, now time.Time) domain.Violation {
		v = p.Apply(v)
		v.UpdatedAt = now
		return v
	},
	Match: func(v domain.Violation, f domain.ViolationFilter) bool {
		return contains(f.Query, v.PlateNumber, v.LicenseNumber, v.ViolatorName, v.ViolationType, v.Location) &&
			exact(f.Status, string(v.Status)) &&
			exact(f.ViolationType, v.ViolationType) &&
			exact(f.City, v.City) &&
			exact(f.PlateNumber, v.PlateNumber)
	},
}

// AuthorityDescriptor describes authorities.
var AuthorityDescriptor = Descriptor[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]{
	Resource: domain.ResourceAuthorities,
	ID:       func(a domain.Authority) string { return a.ID },
	Prepare: func(a domain.Authority, now time.Time) domain.Authority {
		if a.ID == "" {
			a.ID = id.UUID()
		}
		if a.Status == "" {
			a.Status = domain.AuthorityActive
		}
		stamp(&a.CreatedAt, &a.UpdatedAt, now)
		return a
	},
	Apply: func(a domain.Authority, p domain.AuthorityPatch, now time.Time) domain.Authority {
		a = p.Apply(a)
		a.UpdatedAt = now
		return a
	},
	Match: func(a domain.Authority, f domain.AuthorityFilter) bool {
		return contains(f.Query, a.Code, a.Name, a.City, a.Head) &&
			exact(f.Level, string(a.Level)) &&
			exact(f.City, a.City) &&
			exact(f.Status, a.Status)
	},
}

// NewsDescriptor describes news articles.
var NewsDescriptor = Descriptor[domain.News, domain.NewsPatch, domain.NewsFilter]{
	Resource: domain.ResourceNews,
	ID:       func(n domain.News) string { return n.ID },
	Prepare: func(n domain.News, now time.Time) domain.News {
		if n.ID == "" {
			n.ID = id.UUID()
		}
		if n.Status == "" {
			n.Status = domain.NewsDraft
		}
		if n.Status == domain.NewsPublished && n.PublishedAt == nil {
			at := now
			n.PublishedAt = &at
		}
		stamp(&n.CreatedAt, &n.UpdatedAt, now)
		return n
	},
	Apply: func(n domain.News, p domain.NewsPatch, now time.Time) domain.News {
		n = p.Apply(n)
		n.UpdatedAt = now
		return n
	},
	Match: func(n domain.News, f domain.NewsFilter) bool {
		return contains(f.Query, n.Title, n.Summary, n.Author) &&
			exact(f.Category, n.Category) &&
			exact(f.Status, string(n.Status))
	},
}

// NewLicenses returns the license collection seeded with rows.
func NewLicenses(rows []domain.License, opts ...Option) *Licenses {
	return NewCollection(LicenseDescriptor, rows, opts...)
}

// NewVehicles returns the vehicle collection seeded with rows.
func NewVehicles(rows []domain.Vehicle, opts ...Option) *Vehicles {
	return NewCollection(VehicleDescriptor, rows, opts...)
}

// NewViolations returns the violation collection seeded with rows.
func NewViolations(rows []domain.Violation, opts ...Option) *Violations {
	return NewCollection(ViolationDescriptor, rows, opts...)
}

// NewAuthorities returns the authority collection seeded with rows.
func NewAuthorities(rows []domain.Authority, opts ...Option) *Authorities {
	return NewCollection(AuthorityDescriptor, rows, opts...)
}

// NewNews returns the news collection seeded with rows.
func NewNews(rows []domain.News, opts ...Option) *NewsItems {
	return NewCollection(NewsDescriptor, rows, opts...)
}
