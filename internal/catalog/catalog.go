// Package catalog resolves current unit prices from the products collection.
// Checkout never trusts a client-supplied price; every line is re-priced here
// at order-creation time.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// ErrProductNotFound covers missing, soft-deleted and inactive products alike.
var ErrProductNotFound = errors.New("product not found")

// LinePrice is the catalog's answer for one product at this moment.
type LinePrice struct {
	ProductID       primitive.ObjectID
	Name            string
	UnitPrice       int64
	DiscountPercent float64
}

// Source is the read-only price collaborator consumed by checkout.
type Source interface {
	Resolve(ctx context.Context, productID primitive.ObjectID) (LinePrice, error)
}

// Catalog reads prices straight from the products collection.
type Catalog struct {
	products *mongo.Collection
}

func New(db *mongo.Database) *Catalog {
	return &Catalog{products: db.Collection("products")}
}

// Resolve looks up the product and returns its effective unit price in minor
// units together with any storefront discount percentage.
func (c *Catalog) Resolve(ctx context.Context, productID primitive.ObjectID) (LinePrice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var product models.Product
	err := c.products.FindOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return LinePrice{}, ErrProductNotFound
	}
	if err != nil {
		return LinePrice{}, err
	}
	if !product.IsActive {
		return LinePrice{}, ErrProductNotFound
	}

	return LinePrice{
		ProductID:       product.ID,
		Name:            product.Name,
		UnitPrice:       toMinorUnits(effectiveUnitPrice(product.Price, product.SaleEnabled, product.SalePrice)),
		DiscountPercent: product.DiscountPercent,
	}, nil
}

func isOnSale(price float64, saleEnabled bool, salePrice float64) bool {
	return saleEnabled && salePrice > 0 && salePrice < price
}

// effectiveUnitPrice prefers a valid sale price over the list price.
func effectiveUnitPrice(price float64, saleEnabled bool, salePrice float64) float64 {
	if isOnSale(price, saleEnabled, salePrice) {
		return salePrice
	}
	return price
}

// toMinorUnits converts a stored currency amount (e.g. 12.34) to minor units
// (1234), rounding half-up at the minor unit.
func toMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
