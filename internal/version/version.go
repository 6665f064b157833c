// ABOUTME: Build and product identification
// ABOUTME: Reported by the studio API and mDNS advertisements
package version

const (
	// Version is the studio release
	Version = "0.3.0"

	// Product is the product name shown to clients
	Product = "Vocalize Studio"

	// Manufacturer identifies the publisher
	Manufacturer = "Vocalize Studio"
)
