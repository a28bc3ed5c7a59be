package account

import (
	"errors"
	"fmt"
)

// Login failure types surfaced to the requesting connection
var (
	ErrWrongPassword   = errors.New("wrong password")
	ErrAccountNotFound = errors.New("account not found")
)

// BanActiveError rejects a login while a ban has time remaining
// FUNCTIONAL DISCOVERY: Carries the minutes left (rounded up) so the
// transport can show the user exactly how long to wait
type BanActiveError struct {
	MinutesLeft int
}

func (e *BanActiveError) Error() string {
	return fmt.Sprintf("banned, %d minutes left", e.MinutesLeft)
}
