package repo

import "errors"

// Shared repository errors.
var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrDonationNotFound  = errors.New("donation not found")
	ErrNotOwner          = errors.New("donation belongs to another donor")
	ErrAlreadyReserved   = errors.New("donation already reserved")
	ErrOwnDonation       = errors.New("donor cannot reserve own donation")
	ErrNotReserved       = errors.New("donation is not reserved")
	ErrNoCancelAuthority = errors.New("only the reserving user or the donor can cancel")
)
