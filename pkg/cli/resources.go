package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/app"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/service"
	"github.com/getmockd/regdesk/pkg/table"
	"github.com/getmockd/regdesk/pkg/views"
)

func newLicensesCmd(e *env) *cobra.Command {
	rc := &resourceCmd[domain.License, domain.LicensePatch, domain.LicenseFilter]{
		e:        e,
		name:     domain.ResourceLicenses,
		singular: "license",
		short:    "Manage driver licenses",
		aliases:  []string{"license", "lic"},
		view:     views.Licenses,
		svc: func(a *app.App) *service.Resource[domain.License, domain.LicensePatch, domain.LicenseFilter] {
			return a.Licenses.Resource
		},
		id: func(l domain.License) string { return l.ID },
		actions: []action[domain.License]{
			{domain.ActionApprove, "Approve a pending license", func(a *app.App) func(context.Context, string) (domain.License, error) { return a.Licenses.Approve }},
			{domain.ActionRenew, "Renew a license for another term", func(a *app.App) func(context.Context, string) (domain.License, error) { return a.Licenses.Renew }},
			{domain.ActionSuspend, "Suspend an active license", func(a *app.App) func(context.Context, string) (domain.License, error) { return a.Licenses.Suspend }},
			{domain.ActionReactivate, "Reactivate a suspended license", func(a *app.App) func(context.Context, string) (domain.License, error) { return a.Licenses.Reactivate }},
			{domain.ActionRevoke, "Revoke a license", func(a *app.App) func(context.Context, string) (domain.License, error) { return a.Licenses.Revoke }},
		},
		stats: func(a *app.App) func(context.Context) (any, error) {
			return func(ctx context.Context) (any, error) { return a.Licenses.Stats(ctx) }
		},
	}
	rc.extra = []*cobra.Command{{
		Use:   "expiring",
		Short: fmt.Sprintf("List valid licenses that expire within %d days", domain.ExpiringSoonDays),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			rows, err := a.Licenses.Expiring(cmd.Context())
			if err != nil {
				return err
			}
			return printRows(e, cmd, views.Licenses, rows, "No licenses expire soon")
		},
	}}
	return rc.command()
}

func newVehiclesCmd(e *env) *cobra.Command {
	rc := &resourceCmd[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter]{
		e:        e,
		name:     domain.ResourceVehicles,
		singular: "vehicle",
		short:    "Manage vehicle registrations",
		aliases:  []string{"vehicle", "veh"},
		view:     views.Vehicles,
		svc: func(a *app.App) *service.Resource[domain.Vehicle, domain.VehiclePatch, domain.VehicleFilter] {
			return a.Vehicles.Resource
		},
		id: func(v domain.Vehicle) string { return v.ID },
		actions: []action[domain.Vehicle]{
			{domain.ActionActivate, "Activate a registration", func(a *app.App) func(context.Context, string) (domain.Vehicle, error) { return a.Vehicles.Activate }},
			{domain.ActionSuspend, "Suspend a registration", func(a *app.App) func(context.Context, string) (domain.Vehicle, error) { return a.Vehicles.Suspend }},
			{domain.ActionDeregister, "Deregister a vehicle", func(a *app.App) func(context.Context, string) (domain.Vehicle, error) { return a.Vehicles.Deregister }},
		},
		stats: func(a *app.App) func(context.Context) (any, error) {
			return func(ctx context.Context) (any, error) { return a.Vehicles.Stats(ctx) }
		},
	}
	return rc.command()
}

func newViolationsCmd(e *env) *cobra.Command {
	rc := &resourceCmd[domain.Violation, domain.ViolationPatch, domain.ViolationFilter]{
		e:        e,
		name:     domain.ResourceViolations,
		singular: "violation",
		short:    "Manage traffic violations",
		aliases:  []string{"violation", "vio"},
		view:     views.Violations,
		svc: func(a *app.App) *service.Resource[domain.Violation, domain.ViolationPatch, domain.ViolationFilter] {
			return a.Violations.Resource
		},
		id: func(v domain.Violation) string { return v.ID },
		actions: []action[domain.Violation]{
			{domain.ActionPay, "Record payment of a fine", func(a *app.App) func(context.Context, string) (domain.Violation, error) { return a.Violations.Pay }},
			{domain.ActionCancel, "Cancel a violation", func(a *app.App) func(context.Context, string) (domain.Violation, error) { return a.Violations.Cancel }},
		},
		stats: func(a *app.App) func(context.Context) (any, error) {
			return func(ctx context.Context) (any, error) { return a.Violations.Stats(ctx) }
		},
	}
	rc.extra = []*cobra.Command{{
		Use:   "mark-overdue",
		Short: "Mark unpaid violations past their due date as overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.App()
			if err != nil {
				return err
			}
			rows, err := a.Violations.MarkOverdue(cmd.Context())
			if err != nil {
				return err
			}
			hint(cmd, "Marked %d violations overdue", len(rows))
			return printRows(e, cmd, views.Violations, rows, "No violations are overdue")
		},
	}}
	return rc.command()
}

func newAuthoritiesCmd(e *env) *cobra.Command {
	rc := &resourceCmd[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter]{
		e:        e,
		name:     domain.ResourceAuthorities,
		singular: "authority",
		short:    "Manage regulatory authorities",
		aliases:  []string{"authority", "auth"},
		view:     views.Authorities,
		svc: func(a *app.App) *service.Resource[domain.Authority, domain.AuthorityPatch, domain.AuthorityFilter] {
			return a.Authorities.Resource
		},
		id: func(x domain.Authority) string { return x.ID },
	}
	return rc.command()
}

func newNewsCmd(e *env) *cobra.Command {
	rc := &resourceCmd[domain.News, domain.NewsPatch, domain.NewsFilter]{
		e:        e,
		name:     domain.ResourceNews,
		singular: "news item",
		short:    "Manage news and announcements",
		view:     views.News,
		svc: func(a *app.App) *service.Resource[domain.News, domain.NewsPatch, domain.NewsFilter] {
			return a.News.Resource
		},
		id: func(n domain.News) string { return n.ID },
		actions: []action[domain.News]{
			{domain.ActionPublish, "Publish a draft", func(a *app.App) func(context.Context, string) (domain.News, error) { return a.News.Publish }},
			{domain.ActionArchive, "Archive a news item", func(a *app.App) func(context.Context, string) (domain.News, error) { return a.News.Archive }},
		},
	}
	return rc.command()
}

// printRows prints rows with the view's columns, or as a JSON array.
func printRows[T any](e *env, cmd *cobra.Command, view views.View[T], rows []T, empty string) error {
	if rows == nil {
		rows = []T{}
	}
	return e.printResult(cmd, rows, func(w io.Writer) error {
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, empty)
			return err
		}
		return table.Render(w, view.Columns, table.View[T]{Rows: rows, TotalItems: len(rows), PageSize: len(rows)})
	})
}
