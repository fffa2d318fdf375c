package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

// Address is a postal address collected at checkout. Email is only set on
// the billing address of guest checkouts, where it is the sole way to reach
// the customer.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

var (
	frenchPostalCode = regexp.MustCompile(`^\d{5}$`)
	emailPattern     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AddressValidator checks address shape and the configured country
// allow-list. It is stateless and safe for concurrent use.
type AddressValidator struct {
	allowedCountries map[string]struct{}
}

// NewAddressValidator creates a validator permitting only the given ISO
// 3166-1 alpha-2 country codes (case-insensitive).
func NewAddressValidator(allowedCountries []string) *AddressValidator {
	allowed := make(map[string]struct{}, len(allowedCountries))
	for _, c := range allowedCountries {
		allowed[strings.ToUpper(c)] = struct{}{}
	}
	return &AddressValidator{allowedCountries: allowed}
}

// Validate checks required fields, the postal code format, the email format
// when an email is present, and the country allow-list. It fails fast with a
// *BusinessError carrying CodeInvalidAddress.
func (v *AddressValidator) Validate(a Address) error {
	required := []struct {
		value string
		label string
	}{
		{a.FirstName, "le prénom"},
		{a.LastName, "le nom"},
		{a.Line1, "l'adresse"},
		{a.City, "la ville"},
		{a.PostalCode, "le code postal"},
		{a.Country, "le pays"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return businessErr(CodeInvalidAddress,
				fmt.Sprintf("Adresse invalide: %s est requis", f.label))
		}
	}

	country := strings.ToUpper(a.Country)
	if _, ok := v.allowedCountries[country]; !ok {
		return businessErr(CodeInvalidAddress,
			fmt.Sprintf("La livraison vers le pays %s n'est pas disponible", country))
	}

	// Postal code format is only pinned down for France; other allowed
	// countries just need a non-empty value.
	if country == "FR" && !frenchPostalCode.MatchString(a.PostalCode) {
		return businessErr(CodeInvalidAddress,
			"Le code postal doit comporter 5 chiffres")
	}

	if a.Email != "" && !emailPattern.MatchString(a.Email) {
		return businessErr(CodeInvalidAddress,
			"L'adresse e-mail est invalide")
	}

	return nil
}
