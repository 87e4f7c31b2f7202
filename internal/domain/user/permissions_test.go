// internal/domain/user/permissions_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
)

func TestCan(t *testing.T) {
	tests := []struct {
		perm       Permission
		admin      bool
		pharmacist bool
		cashier    bool
	}{
		{PermSalesCreate, true, true, true},
		{PermReturnsCreate, true, true, true},
		{PermInventoryRead, true, true, true},
		{PermInventoryWrite, true, true, false},
		{PermSuppliersWrite, true, true, false},
		{PermReportsRead, true, true, false},
		{PermUsersManage, true, false, false},
		{Permission("unknown:thing"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.admin, Can(RoleAdmin, tt.perm))
			assert.Equal(t, tt.pharmacist, Can(RolePharmacist, tt.perm))
			assert.Equal(t, tt.cashier, Can(RoleCashier, tt.perm))
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(Actor{UserID: "u1", Role: RoleAdmin}, PermUsersManage))

	err := Authorize(Actor{}, PermSalesCreate)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	err = Authorize(Actor{UserID: "u1", Role: Role("JANITOR")}, PermSalesCreate)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	err = Authorize(Actor{UserID: "u1", Role: RoleCashier}, PermInventoryWrite)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}
