// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health and session - Public
	"Health":      SecurityPublic,
	"SignIn":      SecurityPublic,
	"CurrentUser": SecurityPublic,
	"SignOut":     SecurityPublic,

	// Catalog - Public
	"SearchVehicles": SecurityPublic,
	"QuoteVehicle":   SecurityPublic,

	// Booking - Access Protected
	"OpenBooking":    SecurityAccess,
	"GetBooking":     SecurityAccess,
	"UpdateBooking":  SecurityAccess,
	"ProceedBooking": SecurityAccess,
	"BackBooking":    SecurityAccess,
	"ConfirmBooking": SecurityAccess,
	"CloseBooking":   SecurityAccess,

	// Tracking - Access Protected
	"OpenTracking":     SecurityAccess,
	"GetTracking":      SecurityAccess,
	"CompleteTracking": SecurityAccess,
	"CloseTracking":    SecurityAccess,

	// Rentals - Access Protected
	"ListRentals":  SecurityAccess,
	"RentalStats":  SecurityAccess,
	"ActiveRental": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
