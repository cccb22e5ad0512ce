package constants

// Static route constants
const (
	PublicRoute             = "/"
	SponsorshipRoute        = "/sponsorship"
	SponsorshipCallbackPath = "/api/v1/sponsorship/callback"
)

// Cache keys for public read endpoints
const (
	CacheKeyRecentSponsors = "sponsorship:recent"
	CacheKeyNextExpiration = "sponsorship:next-expiration"
)
