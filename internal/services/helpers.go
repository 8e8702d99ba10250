package services

import (
	"time"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/identity"
)

// ensureOwner rejects a mutation when the stored record resolves to a user
// other than the requester. Records whose owner cannot be resolved fall back
// to the requester, so legacy rows surface instead of erroring.
func ensureOwner(ownerID string, user *identity.User, roster *identity.Registry) error {
	resolved := identity.ResolveOwner(
		map[string]interface{}{"userId": ownerID}, user.ID, roster,
	)
	if resolved != user.ID {
		return apperr.NotAuthorized("registro pertence a outro usuário")
	}
	return nil
}

// ownedBy reports whether a decorated record belongs to the requester.
func ownedBy(decorated map[string]interface{}, user *identity.User) bool {
	owner, _ := decorated["userId"].(string)
	return owner == user.ID
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
