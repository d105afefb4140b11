package impersonate

import "net/url"

// URLName is the path segment of the impersonate command under a user record.
const URLName = "impersonate"

// URL returns the relative link that triggers impersonation of authority.
func URL(authority string) string {
	return URLName + "?name=" + url.QueryEscape(authority)
}
