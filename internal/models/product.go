package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the read-only catalog document checkout re-prices against. The
// catalog itself is managed elsewhere; this core only ever reads it.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Price           float64            `bson:"price" json:"price"`
	SaleEnabled     bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice       float64            `bson:"salePrice" json:"salePrice"`
	DiscountPercent float64            `bson:"discountPercent,omitempty" json:"discountPercent,omitempty"`
	Category        StringList         `bson:"category" json:"category"`
	Stock           int                `bson:"stock" json:"stock"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	IsDeleted       bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt       *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
