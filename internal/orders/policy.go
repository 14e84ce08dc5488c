package orders

import "github.com/aromabay/aromabay-backend/pkg/enums"

// Access rules are pure functions over (role, owner, caller) so they can
// be checked without touching storage.

// CanView reports whether the caller may read the order.
func CanView(role enums.UserRole, ownerLogin, callerLogin string) bool {
	if role.IsPrivileged() {
		return true
	}
	return callerLogin != "" && callerLogin == ownerLogin
}

// CanCancel reports whether the caller may cancel the order. Owners can
// cancel their own orders; managers and administrators can cancel any.
func CanCancel(role enums.UserRole, ownerLogin, callerLogin string) bool {
	if role.IsPrivileged() {
		return true
	}
	return callerLogin != "" && callerLogin == ownerLogin
}

// CanAdvance reports whether the caller may move an order through the
// fulfilment states. Only staff roles qualify, ownership is irrelevant.
func CanAdvance(role enums.UserRole) bool {
	return role.IsPrivileged()
}

// CanListAll reports whether the caller may list other users' orders.
func CanListAll(role enums.UserRole) bool {
	return role.IsPrivileged()
}
