package licenses

import (
	"partnerhub/internal/platform/repositories"
)

// The two duplicate checks are deliberately distinct operations with
// different policies: the global guard rejects the whole batch (anti-fraud,
// one person must not hold licenses under multiple partners), while the
// scope guard only filters the offenders out and lets the rest proceed.

// CheckGlobal looks the whole candidate set up against every license row
// outside the caller's scope in one round trip. Any hit rejects the entire
// batch; hits inside the caller's own scope are the scope guard's business.
func CheckGlobal(repo *repositories.LicenseRepository, scope repositories.Scope, candidates []string) error {
	duplicates, err := repo.FindEmailsGlobal(scope, candidates)
	if err != nil {
		return err
	}
	if len(duplicates) > 0 {
		return &GlobalDuplicateError{Emails: duplicates}
	}
	return nil
}

// FilterScope splits candidates into those free to proceed and those that
// already hold a license within the caller's own scope.
func FilterScope(repo *repositories.LicenseRepository, scope repositories.Scope, candidates []string) (clean, existing []string, err error) {
	found, err := repo.FindEmailsInScope(scope, candidates)
	if err != nil {
		return nil, nil, err
	}
	if len(found) == 0 {
		return candidates, nil, nil
	}

	taken := make(map[string]struct{}, len(found))
	for _, email := range found {
		taken[email] = struct{}{}
	}

	clean = make([]string, 0, len(candidates))
	for _, email := range candidates {
		if _, ok := taken[email]; ok {
			existing = append(existing, email)
			continue
		}
		clean = append(clean, email)
	}
	return clean, existing, nil
}
