// internal/domain/user/permissions.go
package user

import "github.com/your-org/pharmacy-backend/internal/pkg/apperror"

// Permission names a capability granted to roles
type Permission string

const (
	PermSalesCreate    Permission = "sales:create"
	PermSalesRead      Permission = "sales:read"
	PermReturnsCreate  Permission = "returns:create"
	PermReturnsRead    Permission = "returns:read"
	PermInventoryRead  Permission = "inventory:read"
	PermInventoryWrite Permission = "inventory:write"
	PermSuppliersRead  Permission = "suppliers:read"
	PermSuppliersWrite Permission = "suppliers:write"
	PermReportsRead    Permission = "reports:read"
	PermUsersManage    Permission = "users:manage"
)

var permissionTable = map[Permission][]Role{
	PermSalesCreate:    {RoleAdmin, RolePharmacist, RoleCashier},
	PermSalesRead:      {RoleAdmin, RolePharmacist, RoleCashier},
	PermReturnsCreate:  {RoleAdmin, RolePharmacist, RoleCashier},
	PermReturnsRead:    {RoleAdmin, RolePharmacist, RoleCashier},
	PermInventoryRead:  {RoleAdmin, RolePharmacist, RoleCashier},
	PermInventoryWrite: {RoleAdmin, RolePharmacist},
	PermSuppliersRead:  {RoleAdmin, RolePharmacist, RoleCashier},
	PermSuppliersWrite: {RoleAdmin, RolePharmacist},
	PermReportsRead:    {RoleAdmin, RolePharmacist},
	PermUsersManage:    {RoleAdmin},
}

// Can reports whether role holds permission. Unknown permissions are denied.
func Can(role Role, perm Permission) bool {
	for _, r := range permissionTable[perm] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize checks that the actor is signed in and holds perm
func Authorize(actor Actor, perm Permission) error {
	if !actor.Authenticated() {
		return apperror.Unauthorized("Unauthorized")
	}
	if !Can(actor.Role, perm) {
		return apperror.Forbidden("You do not have permission to perform this action")
	}
	return nil
}
