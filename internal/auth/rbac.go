package auth

// Permission names referenced by route guards.
const (
	PermAdmin          = "admin"
	PermManageCatalog  = "manage_catalog"
	PermViewAllOrders  = "view_all_orders"
	PermManageOrders   = "manage_orders"
	PermPlaceOrders    = "place_orders"
	PermRechargeWallet = "recharge_wallet"
	PermViewOwnOrders  = "view_own_orders"
)

// rolePermissions maps the stored role to the effective permission set.
// Roles are coarse on purpose; the storefront only distinguishes customers
// from staff.
var rolePermissions = map[string][]string{
	"customer": {
		PermPlaceOrders,
		PermRechargeWallet,
		PermViewOwnOrders,
	},
	"admin": {
		PermAdmin,
		PermManageCatalog,
		PermViewAllOrders,
		PermManageOrders,
		PermPlaceOrders,
		PermRechargeWallet,
		PermViewOwnOrders,
	},
}

func PermissionsForRole(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return rolePermissions["customer"]
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
