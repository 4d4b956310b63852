package redis

// Key layout. Registries and counters are durable, so no key carries a
// TTL: Redis is the restart mirror of the in-memory state.
const (
	// KeyPrefixEmployee is the prefix for employee keys
	KeyPrefixEmployee = "linkdrop:employee:"
	// KeyAllEmployees is the key for the set of all employee IDs
	KeyAllEmployees = "linkdrop:employees:all"

	// KeyPrefixAdmin is the prefix for admin keys
	KeyPrefixAdmin = "linkdrop:admin:"
	// KeyAllAdmins is the key for the set of all admin IDs
	KeyAllAdmins = "linkdrop:admins:all"

	// KeyPrefixCounters is the prefix for per-employee usage counters
	KeyPrefixCounters = "linkdrop:counters:"
	// KeyAllCounters is the key for the set of employee IDs with counters
	KeyAllCounters = "linkdrop:counters:all"

	// KeyPrefixContribution is the prefix for per-contributor stats
	KeyPrefixContribution = "linkdrop:contrib:"
	// KeyAllContributions is the key for the set of contributor IDs
	KeyAllContributions = "linkdrop:contribs:all"

	// KeyPool holds the FIFO pool snapshot, head first
	KeyPool = "linkdrop:pool"
)

// EmployeeKey returns the Redis key for an employee by ID
func EmployeeKey(id string) string {
	return KeyPrefixEmployee + id
}

// AdminKey returns the Redis key for an admin by ID
func AdminKey(id string) string {
	return KeyPrefixAdmin + id
}

// CountersKey returns the Redis key for an employee's usage counters
func CountersKey(employeeID string) string {
	return KeyPrefixCounters + employeeID
}

// ContributionKey returns the Redis key for a contributor's stats
func ContributionKey(contributorID string) string {
	return KeyPrefixContribution + contributorID
}
