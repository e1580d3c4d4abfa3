package domain

import "time"

// SystemCustomerName identifies the singleton customer that owns all system
// accounts.
const SystemCustomerName = "SYSTEM"

// Customer is the account holder referenced by ownership checks. Profile
// management lives elsewhere; the engine only needs identity and the system
// flag.
type Customer struct {
	ID        string
	Name      string
	System    bool
	CreatedAt time.Time
}
