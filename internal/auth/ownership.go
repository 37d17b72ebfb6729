package auth

import "github.com/spec-kit/marketplace-service/internal/domain"

// Decision is the outcome of an ownership check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Authorize allows a mutation only when the subject owns the resource. ownerID must be the
// owner as persisted, read immediately before the mutation, never a client-supplied value.
func Authorize(subjectID, ownerID int64) Decision {
	if subjectID > 0 && subjectID == ownerID {
		return Allow
	}
	return Deny
}

// RequireOwner is Authorize expressed as an error: domain.ErrForbidden on Deny.
func RequireOwner(subjectID, ownerID int64) error {
	if Authorize(subjectID, ownerID) != Allow {
		return domain.ErrForbidden
	}
	return nil
}
