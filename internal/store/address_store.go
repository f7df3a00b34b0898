// Package store persists the checkout core's documents: user address books,
// orders, and in-flight checkout drafts.
package store

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

const addressOpTimeout = 5 * time.Second

// AddressStore manages the address array embedded on the user document.
// Every mutation is a read-modify-write guarded by the document's addressRev;
// two concurrent writers for the same user cannot both win.
type AddressStore struct {
	users *mongo.Collection

	// PromoteOnDelete elects the first remaining address as default when the
	// default address is deleted. Off by default.
	PromoteOnDelete bool
}

func NewAddressStore(db *mongo.Database, promoteOnDelete bool) *AddressStore {
	return &AddressStore{users: db.Collection("users"), PromoteOnDelete: promoteOnDelete}
}

// List returns the user's addresses in insertion order.
func (s *AddressStore) List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, addressOpTimeout)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Addresses, nil
}

// Get returns one address by id, scoped to the owner.
func (s *AddressStore) Get(ctx context.Context, userID primitive.ObjectID, addressID string) (models.Address, error) {
	addresses, err := s.List(ctx, userID)
	if err != nil {
		return models.Address{}, err
	}
	for _, addr := range addresses {
		if addr.ID == addressID {
			return addr, nil
		}
	}
	return models.Address{}, ErrNotFound
}

// Add appends a new address. Adding an address that matches an existing one
// on the dedup key is an idempotent no-op returning the unchanged list. The
// first address, or one flagged default, becomes the sole default.
func (s *AddressStore) Add(ctx context.Context, userID primitive.ObjectID, candidate models.Address) ([]models.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, addressOpTimeout)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidate.ID = uuid.NewString()
	candidate.CreatedAt = time.Now()

	addresses, changed := addAddress(user.Addresses, candidate)
	if !changed {
		log.Println("[ADDRESS] [INFO] duplicate address ignored for user:", userID.Hex())
		return addresses, nil
	}

	if err := s.writeAddresses(ctx, userID, user.AddressRev, addresses); err != nil {
		return nil, err
	}
	log.Println("[ADDRESS] [INFO] address created:", candidate.ID)
	return addresses, nil
}

// Update rewrites the fields of one owned address. Setting isDefault clears
// the flag on every sibling in the same write.
func (s *AddressStore) Update(ctx context.Context, userID primitive.ObjectID, addressID string, patch models.Address) ([]models.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, addressOpTimeout)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses, found := updateAddress(user.Addresses, addressID, patch)
	if !found {
		return nil, ErrNotFound
	}

	if err := s.writeAddresses(ctx, userID, user.AddressRev, addresses); err != nil {
		return nil, err
	}
	log.Println("[ADDRESS] [INFO] address updated:", addressID)
	return addresses, nil
}

// Delete removes one owned address. Whether the deleted default hands the
// flag to another address is governed by PromoteOnDelete.
func (s *AddressStore) Delete(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, addressOpTimeout)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses, found := deleteAddress(user.Addresses, addressID, s.PromoteOnDelete)
	if !found {
		return nil, ErrNotFound
	}

	if err := s.writeAddresses(ctx, userID, user.AddressRev, addresses); err != nil {
		return nil, err
	}
	log.Println("[ADDRESS] [INFO] address deleted:", addressID)
	return addresses, nil
}

func (s *AddressStore) loadUser(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// writeAddresses replaces the address array only if addressRev is still the
// revision we read. A miss means a concurrent writer won; the caller gets
// ErrConflict and retries from the top.
func (s *AddressStore) writeAddresses(ctx context.Context, userID primitive.ObjectID, readRev int64, addresses []models.Address) error {
	result, err := s.users.UpdateOne(ctx,
		revFilter(userID, readRev),
		bson.M{
			"$set": bson.M{
				"addresses": addresses,
				"updatedAt": time.Now(),
			},
			"$inc": bson.M{"addressRev": 1},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		log.Println("[ADDRESS] [WARN] addressRev conflict for user:", userID.Hex())
		return ErrConflict
	}
	return nil
}

// revFilter matches the user at the revision we read. Users provisioned by
// the external identity system have no addressRev field yet; Mongo equality
// on 0 does not match a missing field, so revision 0 accepts both shapes.
func revFilter(userID primitive.ObjectID, readRev int64) bson.M {
	if readRev == 0 {
		return bson.M{
			"_id": userID,
			"$or": []bson.M{
				{"addressRev": 0},
				{"addressRev": bson.M{"$exists": false}},
			},
		}
	}
	return bson.M{"_id": userID, "addressRev": readRev}
}

// addAddress appends candidate to the list unless an existing address matches
// it on the dedup key, in which case the list comes back unchanged. The first
// address, or one flagged default, becomes the sole default.
func addAddress(addresses []models.Address, candidate models.Address) ([]models.Address, bool) {
	for _, existing := range addresses {
		if existing.Matches(candidate) {
			return addresses, false
		}
	}
	if len(addresses) == 0 {
		candidate.IsDefault = true
	}
	if candidate.IsDefault {
		addresses = clearDefault(addresses)
	}
	return append(addresses, candidate), true
}

// updateAddress rewrites one address in place, preserving its identity and
// creation time. A default patch clears the flag on every sibling.
func updateAddress(addresses []models.Address, addressID string, patch models.Address) ([]models.Address, bool) {
	index := indexOf(addresses, addressID)
	if index == -1 {
		return nil, false
	}
	if patch.IsDefault {
		addresses = clearDefault(addresses)
	}
	existing := addresses[index]
	patch.ID = existing.ID
	patch.CreatedAt = existing.CreatedAt
	addresses[index] = patch
	return addresses, true
}

// deleteAddress removes one address. When promote is set and the default was
// deleted, the first remaining address inherits the flag.
func deleteAddress(addresses []models.Address, addressID string, promote bool) ([]models.Address, bool) {
	index := indexOf(addresses, addressID)
	if index == -1 {
		return nil, false
	}
	wasDefault := addresses[index].IsDefault
	remaining := append(addresses[:index:index], addresses[index+1:]...)
	if wasDefault && promote && len(remaining) > 0 {
		remaining[0].IsDefault = true
	}
	return remaining, true
}

func indexOf(addresses []models.Address, addressID string) int {
	for i, addr := range addresses {
		if addr.ID == addressID {
			return i
		}
	}
	return -1
}

func clearDefault(addresses []models.Address) []models.Address {
	for i := range addresses {
		addresses[i].IsDefault = false
	}
	return addresses
}
