package auth

// Role is the access level carried in a token.
type Role string

const (
	// RoleViewer reads stored tariffs and runs pure calculations.
	RoleViewer Role = "viewer"
	// RoleOperator ingests documents.
	RoleOperator Role = "operator"
	// RoleAdmin publishes station plans.
	RoleAdmin Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole validates a role string.
func NormalizeRole(value string) (Role, bool) {
	if _, ok := roleRanks[Role(value)]; ok {
		return Role(value), true
	}
	return "", false
}

// RoleAtLeast reports whether role satisfies required.
func RoleAtLeast(role Role, required Role) bool {
	return roleRanks[role] >= roleRanks[required] && roleRanks[role] > 0
}
