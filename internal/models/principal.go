package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
)

// Principal is the authenticated caller of a booking operation.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}
