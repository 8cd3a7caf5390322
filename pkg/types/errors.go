package types

import "errors"

var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrClaimantNotFound  = errors.New("claimant not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrDuplicateNumber   = errors.New("complaint number already allocated")
)

// Step errors identify which write of a complaint creation failed. The
// enclosing transaction is rolled back whichever step it was.
var (
	ErrComplaintInsert = errors.New("complaint insert failed")
	ErrAddressInsert   = errors.New("address insert failed")
	ErrClaimantInsert  = errors.New("claimant insert failed")
)
