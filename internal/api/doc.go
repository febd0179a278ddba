// Package api exposes the playlist services over HTTP with chi.
//
// Handlers resolve the caller from the auth middleware, run the required
// authorization predicate (VerifyOwnership or VerifyAccess) and then call the
// service. Service errors are mapped to statuses by httputil.ServiceError.
package api
