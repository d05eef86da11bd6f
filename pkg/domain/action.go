package domain

// Status actions exposed by the registry. Each maps to
// POST /{resource}/{id}/{action}.
const (
	ActionApprove    = "approve"
	ActionRenew      = "renew"
	ActionSuspend    = "suspend"
	ActionReactivate = "reactivate"
	ActionRevoke     = "revoke"
	ActionActivate   = "activate"
	ActionDeregister = "deregister"
	ActionPay        = "pay"
	ActionCancel     = "cancel"
	ActionPublish    = "publish"
	ActionArchive    = "archive"
)

// Actions lists the actions each resource supports.
var Actions = map[string][]string{
	ResourceLicenses:    {ActionApprove, ActionRenew, ActionSuspend, ActionReactivate, ActionRevoke},
	ResourceVehicles:    {ActionActivate, ActionSuspend, ActionDeregister},
	ResourceViolations:  {ActionPay, ActionCancel},
	ResourceAuthorities: nil,
	ResourceNews:        {ActionPublish, ActionArchive},
}
