package httpx

// Cookie names shared by the guard middleware and the auth handlers.
const (
	// SessionCookieName references the server-side session record.
	SessionCookieName = "session_id"

	// RedirectCookieName carries the path an unauthenticated visitor was
	// trying to reach, so a successful sign-in can land them there.
	RedirectCookieName = "redirectAfterLogin"
)

// RedirectCookieMaxAge bounds how long a pending redirect stays honored.
// Ten minutes covers a sign-in round trip; anything older is stale intent.
const RedirectCookieMaxAge = 600

// maxPerPage caps the perPage query param before it reaches upstream.
const maxPerPage = 100

// minVehicleYear is the oldest model year a listing may carry.
const minVehicleYear = 1980
