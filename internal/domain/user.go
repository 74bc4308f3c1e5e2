package domain

import "time"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleEmployee     Role = "employee"
	RoleTempWorker   Role = "temp_worker"
	RoleMechanic     Role = "mechanic"
	RoleSalesRep     Role = "sales_rep"
	RoleCompanyOwner Role = "company_owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleTempWorker, RoleMechanic, RoleSalesRep, RoleCompanyOwner:
		return true
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CompanyID    *string    `json:"companyId,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type ResourcePermission struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}

// CompanyPermissions is the JSON permission bag stored per (user, company)
type CompanyPermissions struct {
	Vehicles    ResourcePermission `json:"vehicles"`
	Rentals     ResourcePermission `json:"rentals"`
	Expenses    ResourcePermission `json:"expenses"`
	Settlements ResourcePermission `json:"settlements"`
	Customers   ResourcePermission `json:"customers"`
	Insurances  ResourcePermission `json:"insurances"`
	Protocols   ResourcePermission `json:"protocols"`
}

type UserPermission struct {
	UserID      string             `json:"userId"`
	CompanyID   string             `json:"companyId"`
	CompanyName string             `json:"companyName"`
	Permissions CompanyPermissions `json:"permissions"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// For returns the permission set of a resource name such as "rentals".
// Unknown resources get no permissions.
func (p CompanyPermissions) For(resource string) ResourcePermission {
	switch resource {
	case "vehicles":
		return p.Vehicles
	case "rentals":
		return p.Rentals
	case "expenses":
		return p.Expenses
	case "settlements":
		return p.Settlements
	case "customers":
		return p.Customers
	case "insurances":
		return p.Insurances
	case "protocols":
		return p.Protocols
	}
	return ResourcePermission{}
}

// Allows reports whether the set contains action ("read", "write", "delete")
func (r ResourcePermission) Allows(action string) bool {
	switch action {
	case "read":
		return r.Read
	case "write":
		return r.Write
	case "delete":
		return r.Delete
	}
	return false
}
