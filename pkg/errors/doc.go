// Package errors provides structured error handling with error codes.
//
// Errors carry a typed code, a human readable message, optional details and
// an optional wrapped cause. Codes map onto HTTP status codes so handlers can
// render a service-layer error without knowing where it came from:
//
//	if err := guard.CheckPermission(ctx, impersonate.PermissionRead); err != nil {
//		http.Error(w, err.Error(), errors.HTTPStatus(err))
//		return
//	}
//
// Inspection:
//
//	if errors.IsCode(err, errors.ErrCodeUserNotFound) {
//		// Handle not found case
//	}
package errors
