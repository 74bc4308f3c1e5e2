// config/security_config.go
package config

// Resource is a permission-checked entity type
type Resource string

const (
	ResourceVehicles    Resource = "vehicles"
	ResourceRentals     Resource = "rentals"
	ResourceCustomers   Resource = "customers"
	ResourceCompanies   Resource = "companies"
	ResourceExpenses    Resource = "expenses"
	ResourceInsurances  Resource = "insurances"
	ResourceSettlements Resource = "settlements"
	ResourceProtocols   Resource = "protocols"
	ResourceUsers       Resource = "users"
	ResourceMaintenance Resource = "maintenance"
)

// Action is an operation on a resource
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// RolePermissions is the fixed allow-list for non-admin roles.
// Admin bypasses this table entirely.
var RolePermissions = map[string]map[Resource][]Action{
	"employee": {
		ResourceVehicles:   {ActionRead, ActionWrite},
		ResourceRentals:    {ActionRead, ActionWrite, ActionDelete},
		ResourceCustomers:  {ActionRead, ActionWrite, ActionDelete},
		ResourceCompanies:  {ActionRead},
		ResourceExpenses:   {ActionRead, ActionWrite},
		ResourceInsurances: {ActionRead, ActionWrite},
		ResourceProtocols:  {ActionRead, ActionWrite},
	},
	"temp_worker": {
		ResourceVehicles:  {ActionRead},
		ResourceRentals:   {ActionRead, ActionWrite},
		ResourceCustomers: {ActionRead, ActionWrite},
		ResourceProtocols: {ActionRead, ActionWrite},
	},
	"mechanic": {
		ResourceVehicles:   {ActionRead, ActionWrite},
		ResourceInsurances: {ActionRead},
		ResourceProtocols:  {ActionRead, ActionWrite},
	},
	"sales_rep": {
		ResourceVehicles:  {ActionRead},
		ResourceRentals:   {ActionRead, ActionWrite},
		ResourceCustomers: {ActionRead, ActionWrite},
		ResourceCompanies: {ActionRead},
	},
	"company_owner": {
		ResourceVehicles:    {ActionRead},
		ResourceRentals:     {ActionRead},
		ResourceExpenses:    {ActionRead},
		ResourceInsurances:  {ActionRead},
		ResourceSettlements: {ActionRead},
		ResourceProtocols:   {ActionRead},
	},
}

// IsAllowed reports whether a role may perform an action on a resource
func IsAllowed(role string, resource Resource, action Action) bool {
	if role == "admin" {
		return true
	}
	actions, ok := RolePermissions[role][resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
