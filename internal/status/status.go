package status

import "errors"

var (
	// auth
	ErrUserNotFound    = errors.New("auth: user not found")
	ErrPhoneRegistered = errors.New("auth: phone number already registered")
	ErrEmailRegistered = errors.New("auth: email already registered")

	// otp challenges
	ErrChallengeInvalid  = errors.New("otp: challenge expired or not found")
	ErrChallengeMismatch = errors.New("otp: invalid code")

	// session tokens
	ErrTokenMissing = errors.New("token: token missing")
	ErrTokenExpired = errors.New("token: token expired")
	ErrTokenInvalid = errors.New("token: invalid token")
	ErrForbidden    = errors.New("token: admin access required")

	// tickets
	ErrTicketNotFound = errors.New("ticket: ticket not found")
	// ErrTicketNotFoundOrUnauthorized merges "not found", "not yours" and
	// "already sold" so responses never reveal whether a ticket exists or
	// who owns it.
	ErrTicketNotFoundOrUnauthorized = errors.New("ticket: ticket not found, already sold, or not authorized")
	ErrTicketAlreadySold            = errors.New("ticket: ticket already sold")
	ErrTicketSoldDelete             = errors.New("ticket: cannot delete a sold ticket")
	ErrInvalidPrice                 = errors.New("ticket: valid new price is required")

	// intake
	ErrIncompleteExtraction = errors.New("intake: missing fields in extracted data")
	ErrSeatMismatch         = errors.New("intake: seat numbers must match the ticket count")

	// payment
	ErrSignatureMismatch  = errors.New("payment: signature verification failed")
	ErrGatewayUnavailable = errors.New("payment: gateway unavailable")
)
