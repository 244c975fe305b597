package models

import "fmt"

// Address represents a postal address for a chef or client.
type Address struct {
	StreetAddress string
	City          string
	Country       string
	PostalCode    string
}

// ValidateAddress checks that all address fields are present.
func ValidateAddress(addr Address) error {
	if addr.StreetAddress == "" {
		return fmt.Errorf("street address is required")
	}
	if addr.City == "" {
		return fmt.Errorf("city is required")
	}
	if addr.Country == "" {
		return fmt.Errorf("country is required")
	}
	if addr.PostalCode == "" {
		return fmt.Errorf("postal code is required")
	}
	return nil
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s", a.StreetAddress, a.City, a.Country, a.PostalCode)
}
