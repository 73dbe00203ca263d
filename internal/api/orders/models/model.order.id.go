package ordermodels

import "strings"

// IDSeparator joins client email and order token in the external string form
// of an order id.
const IDSeparator = "_"

// OrderID is the structured composite identifier of an order. Internal code
// passes this struct around; the concatenated string form exists only at the
// system boundary.
type OrderID struct {
	ClientEmail string `json:"clientEmail" bson:"clientEmail"`
	OrderToken  string `json:"orderToken" bson:"orderToken"`
}

// ParseOrderID deserializes the external "<email>_<token>" form. The token
// may itself contain separators, and degraded historical data sometimes used
// an email as the token, so only the first separator after an email-shaped
// prefix splits the string. A bare token yields an empty ClientEmail.
func ParseOrderID(identifier string) OrderID {
	identifier = strings.TrimSpace(identifier)

	idx := strings.Index(identifier, IDSeparator)
	if idx > 0 {
		prefix := identifier[:idx]
		if strings.Contains(prefix, "@") {
			return OrderID{
				ClientEmail: strings.ToLower(prefix),
				OrderToken:  identifier[idx+1:],
			}
		}
	}
	return OrderID{OrderToken: identifier}
}

// String serializes the id back to its external form.
func (id OrderID) String() string {
	if id.ClientEmail == "" {
		return id.OrderToken
	}
	return id.ClientEmail + IDSeparator + id.OrderToken
}

// IsZero reports whether the id carries no token at all.
func (id OrderID) IsZero() bool {
	return id.OrderToken == ""
}
