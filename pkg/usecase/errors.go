package usecase

import "errors"

// Rejection reasons of the invite validation chain, in evaluation order.
// The first failing rule determines the reason returned to the visitor.
var (
	ErrChannelNotPermitted = errors.New("not a permitted channel")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrNoEmail             = errors.New("no email provided")
	ErrInvalidCaptcha      = errors.New("invalid captcha")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmailNotAccepted    = errors.New("your email is not on the accepted list")
	ErrConsentRequired     = errors.New("agreement to the code of conduct is mandatory")
)
