// Package customer holds the authenticated customer profile consumed by
// checkout prefill and express-eligibility checks.
package customer

import "context"

// Address is a saved delivery address on the customer profile.
type Address struct {
	Address    string
	City       string
	PostalCode string
}

// Profile describes the current user. A guest session has Authenticated
// false and all other fields empty.
type Profile struct {
	Authenticated bool
	Name          string
	Email         string
	Phone         string
	Address       Address
}

// HasPhone reports whether a phone number is on file, one of the conditions
// for the express pickup path.
func (p Profile) HasPhone() bool {
	return p.Phone != ""
}

// HasAddress reports whether a reusable delivery address is on file.
func (p Profile) HasAddress() bool {
	return p.Address.Address != "" && p.Address.City != ""
}

// Gateway fetches the profile for the current session token. A guest token
// yields a zero Profile rather than an error.
type Gateway interface {
	FetchProfile(ctx context.Context) (*Profile, error)
}
