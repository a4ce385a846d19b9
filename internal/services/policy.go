package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
)

// Principal is the authenticated caller as seen by the access policy.
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func PrincipalFromRequestData(rd *ctxutil.RequestData) (Principal, bool) {
	if rd == nil || rd.UserID == uuid.Nil {
		return Principal{}, false
	}
	return Principal{UserID: rd.UserID, IsAdmin: rd.IsAdmin}, true
}

// CanAccess grants access to the owner of a resource or to any admin.
func CanAccess(p Principal, ownerID uuid.UUID) bool {
	if p.UserID == uuid.Nil {
		return false
	}
	return p.IsAdmin || p.UserID == ownerID
}
