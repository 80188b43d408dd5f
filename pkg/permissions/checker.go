// Package permissions checks role permission strings against required
// permissions with support for wildcards.
//
// Permission Format:
//   - "*" - Full access (all permissions)
//   - "resource.*" - All actions on a resource (e.g., "inventory.*")
//   - "resource.action" - Specific action (e.g., "inventory.read")
package permissions

import (
	"strings"
)

// Route permissions.
const (
	ProductsRead         = "products.read"
	ProductsWrite        = "products.write"
	CatalogRead          = "catalog.read"
	CatalogWrite         = "catalog.write"
	PeopleRead           = "people.read"
	PeopleWrite          = "people.write"
	InventoryRead        = "inventory.read"
	InventoryWrite       = "inventory.write"
	InventoryAdjust      = "inventory.adjust"
	RestockRead          = "restock.read"
	RestockWrite         = "restock.write"
	RestockApprove       = "restock.approve"
	PrescriptionsRead    = "prescriptions.read"
	PrescriptionsWrite   = "prescriptions.write"
	PrescriptionsApprove = "prescriptions.approve"
	InteractionsRead     = "interactions.read"
	InteractionsWrite    = "interactions.write"
	AlertsRead           = "alerts.read"
	AlertsManage         = "alerts.manage"
	OrdersRead           = "orders.read"
	OrdersWrite          = "orders.write"
	UsersManage          = "users.manage"
)

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "inventory.*" matches "inventory.read", "inventory.write", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range userPerms {
		if p == "*" || p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// MergePermissions merges multiple permission sets, removing duplicates.
func MergePermissions(sets ...[]string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}

	return result
}

// CommonPermissions lists every permission a route checks, plus wildcards.
var CommonPermissions = []string{
	ProductsRead, ProductsWrite, "products.*",
	CatalogRead, CatalogWrite, "catalog.*",
	PeopleRead, PeopleWrite, "people.*",
	InventoryRead, InventoryWrite, InventoryAdjust, "inventory.*",
	RestockRead, RestockWrite, RestockApprove, "restock.*",
	PrescriptionsRead, PrescriptionsWrite, PrescriptionsApprove, "prescriptions.*",
	InteractionsRead, InteractionsWrite, "interactions.*",
	AlertsRead, AlertsManage, "alerts.*",
	OrdersRead, OrdersWrite, "orders.*",
	UsersManage, "users.*",
	"*",
}

// IsValidPermission checks if a permission string is in the known list.
func IsValidPermission(perm string) bool {
	for _, p := range CommonPermissions {
		if p == perm {
			return true
		}
	}
	return false
}

// InvalidPermissions returns the entries of perms that are not known.
func InvalidPermissions(perms []string) []string {
	var invalid []string
	for _, p := range perms {
		if !IsValidPermission(p) {
			invalid = append(invalid, p)
		}
	}
	return invalid
}
