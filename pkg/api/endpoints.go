package api

import "net/url"

// Fixed paths relative to the base URL.
const (
	PathHealth      = "/health"
	PathLogin       = "/auth/login"
	PathLogout      = "/auth/logout"
	PathMe          = "/auth/me"
	PathWalletNonce = "/auth/wallet/nonce"
	PathWalletLogin = "/auth/wallet/login"
	PathEvents      = "/events"
)

// CollectionPath returns the path of a resource collection, e.g. /licenses.
func CollectionPath(resource string) string {
	return "/" + resource
}

// ItemPath returns the path of one record.
func ItemPath(resource, id string) string {
	return CollectionPath(resource) + "/" + url.PathEscape(id)
}

// ActionPath returns the path of a status action on one record.
func ActionPath(resource, id, action string) string {
	return ItemPath(resource, id) + "/" + action
}

// StatsPath returns the path of a resource's statistics.
func StatsPath(resource string) string {
	return CollectionPath(resource) + "/stats"
}
