// Package api exposes impersonation over HTTP:
//
//	GET  /me                      effective identity of the request
//	GET  /{userID}/impersonate    authorities the owner may impersonate
//	POST /{userID}/impersonate    impersonate ?name=, then redirect
package api
