package entity

const (
	RoleBuyer = "buyer"
	RoleAdmin = "admin"
)

// Account is the slice of the external auth system the core needs: an
// identity and a role. Anonymous viewers are the zero Account.
type Account struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Account) IsAnonymous() bool {
	return a.ID == ""
}
