package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
)

func TestCanAccess(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name string
		p    Principal
		want bool
	}{
		{"owner", Principal{UserID: owner}, true},
		{"stranger", Principal{UserID: other}, false},
		{"admin", Principal{UserID: other, IsAdmin: true}, true},
		{"anonymous", Principal{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAccess(tc.p, owner); got != tc.want {
				t.Fatalf("CanAccess=%v want %v", got, tc.want)
			}
		})
	}
}

func TestPrincipalFromRequestData(t *testing.T) {
	if _, ok := PrincipalFromRequestData(nil); ok {
		t.Fatalf("nil request data must not yield a principal")
	}
	id := uuid.New()
	p, ok := PrincipalFromRequestData(&ctxutil.RequestData{UserID: id, IsAdmin: true})
	if !ok || p.UserID != id || !p.IsAdmin {
		t.Fatalf("unexpected principal: %+v ok=%v", p, ok)
	}
}
