package repository

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPartnerNotFound = errors.New("partner not found")
	ErrRewardNotFound  = errors.New("reward not found")
	ErrQRCodeNotFound  = errors.New("QR code not found")
	ErrClaimNotFound   = errors.New("claim not found")
	ErrDuplicateClaim  = errors.New("user already claimed this QR code")
	ErrAlreadyReversed = errors.New("claim is already reversed")
	ErrEmailTaken      = errors.New("email already registered")
)

const pgUniqueViolationCode = "23505"
