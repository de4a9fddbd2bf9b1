package model

type ReferralStatus string

const (
	ReferralStatusNew     ReferralStatus = "new"
	ReferralStatusCounted ReferralStatus = "counted"
	ReferralStatusEnd     ReferralStatus = "end"
)

// Referral is one referrer -> referred edge. A user can be referred at most
// once; the referred_id column carries a unique constraint.
type Referral struct {
	ID               int64
	ReferrerID       int64
	ReferredID       int64
	ReferredUsername *string
	Status           ReferralStatus
}
