package identity

// Substitute wraps original so that it presents as primary. The produced
// identity holds exactly primary followed by supplementary, mirrors the
// authenticated flag of original and shares its details.
//
// Substitute does not check that original holds primary. Callers are
// expected to have done so.
func Substitute(original *Authentication, primary Authority, supplementary ...Authority) *Authentication {
	if original == nil {
		original = Anonymous()
	}
	authorities := make([]Authority, 0, 1+len(supplementary))
	authorities = append(authorities, primary)
	authorities = append(authorities, supplementary...)

	return &Authentication{
		kind:          KindSubstitute,
		name:          string(primary),
		authenticated: original.authenticated,
		details:       original.details,
		authorities:   authorities,
		original:      original,
	}
}
