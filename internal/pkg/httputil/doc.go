// Package httputil provides the JSON envelope and error mapping shared by all
// API handlers.
//
// Successful responses are {"status":"success","data":...}. Failures are
// {"status":"fail","message":...} for client errors and
// {"status":"error","message":...} for server errors, with the message
// sanitized for 5xx.
package httputil
