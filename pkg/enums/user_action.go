package enums

// UserAction labels rows written to the user activity log.
type UserAction string

const (
	UserActionRegister   UserAction = "register"
	UserActionLogin      UserAction = "login"
	UserActionAddToCart  UserAction = "add_to_cart"
	UserActionPlaceOrder UserAction = "place_order"
)

// String implements fmt.Stringer.
func (a UserAction) String() string {
	return string(a)
}
