package repository

import "github.com/cockroachdb/errors"

var (
	ErrTrackingNotFound = errors.New("tracking entry not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrVoucherNotHeld   = errors.New("user does not hold this voucher")
	ErrVoucherConflict  = errors.New("user vouchers changed concurrently")
)
