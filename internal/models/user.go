package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a single shipping address embedded on the user document. Orders
// copy the value at checkout time, so later edits never touch placed orders.
type Address struct {
	ID         string    `bson:"id" json:"id"`
	FirstName  string    `bson:"firstName" json:"firstName"`
	LastName   string    `bson:"lastName" json:"lastName"`
	Province   string    `bson:"province" json:"province"`
	City       string    `bson:"city" json:"city"`
	Area       string    `bson:"area,omitempty" json:"area,omitempty"`
	PostalCode string    `bson:"postalCode" json:"postalCode"`
	Phone      string    `bson:"phone" json:"phone"`
	Line1      string    `bson:"line1" json:"line1"`
	IsDefault  bool      `bson:"isDefault" json:"isDefault"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// AddressKey is the value on which addresses are de-duplicated. Two addresses
// with equal keys are the same address regardless of id or default flag.
type AddressKey struct {
	Phone      string
	Line1      string
	PostalCode string
	FirstName  string
	LastName   string
}

// Key returns the dedup key with surrounding whitespace stripped.
func (a Address) Key() AddressKey {
	return AddressKey{
		Phone:      strings.TrimSpace(a.Phone),
		Line1:      strings.TrimSpace(a.Line1),
		PostalCode: strings.TrimSpace(a.PostalCode),
		FirstName:  strings.TrimSpace(a.FirstName),
		LastName:   strings.TrimSpace(a.LastName),
	}
}

// Matches reports whether two addresses collide on the dedup key.
func (a Address) Matches(b Address) bool { return a.Key() == b.Key() }

// FullName joins the recipient name for the order snapshot.
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// User is the account document. Addresses live embedded on it; AddressRev is
// bumped on every address mutation and guards concurrent writers.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name" json:"name"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Addresses  []Address          `bson:"addresses" json:"addresses"`
	AddressRev int64              `bson:"addressRev" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
