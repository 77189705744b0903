package model

// Role of the authenticated backend user.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleRider      Role = "rider"
	RoleAdmin      Role = "admin"
)

// User is the backend account bound to a session.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Credentials are forwarded to the backend login endpoint.
type Credentials struct {
	Email    string
	Password string
}
