// Package service is the business layer of regdesk.
//
// Every resource is reached through a Repository. In mock mode that is a
// store.Collection seeded from the mock data set; in live mode it is an
// api.Resource talking to the backend. The mode is chosen once when the
// application is assembled, so nothing in this package branches on it.
//
// Generic CRUD lives in Resource. The per-resource services add required
// field validation and the status actions of their domain (renewing a
// license, paying a fine, publishing an article). Actions check the status
// transition before writing; a raw Update does not.
package service
