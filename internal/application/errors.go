package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrPasswordRequired   = errors.New("password is required")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrArticleNotFound    = errors.New("article not found")
	ErrForbidden          = errors.New("only the author can modify this article")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidReaction    = errors.New("invalid reaction type")
	ErrSearchUnavailable  = errors.New("search is not configured")
)
