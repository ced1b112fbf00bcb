package domain

import "time"

// SubscriptionKeys is the asymmetric key material a browser hands out when
// registering a push endpoint.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// Subscription is one registered push endpoint for a user. A user may hold
// many (one per device/browser). Endpoint identity is the only uniqueness
// constraint; writes to the same endpoint are last-write-wins.
type Subscription struct {
	ID        string           `json:"id" bson:"id"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Endpoint  string           `json:"endpoint" bson:"endpoint"`
	Keys      SubscriptionKeys `json:"keys" bson:"keys"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// Template is a stored notification template owned by a user.
type Template struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Channel   Channel   `json:"channel" bson:"channel"`
	Subject   string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
