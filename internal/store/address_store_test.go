package store

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func countDefaults(addresses []models.Address) int {
	n := 0
	for _, addr := range addresses {
		if addr.IsDefault {
			n++
		}
	}
	return n
}

func TestAddAddressFirstBecomesDefault(t *testing.T) {
	addresses, changed := addAddress(nil, models.Address{ID: "a", Phone: "0555", Line1: "Main St 1"})
	if !changed {
		t.Fatal("first add reported no change")
	}
	if len(addresses) != 1 || !addresses[0].IsDefault {
		t.Fatalf("first address should be default, got %+v", addresses)
	}
}

func TestAddAddressDuplicateIsNoOp(t *testing.T) {
	base := models.Address{ID: "a", Phone: "0555", Line1: "Main St 1", PostalCode: "34000", FirstName: "Ada", LastName: "Aksoy", IsDefault: true}
	addresses := []models.Address{base}

	dup := base
	dup.ID = "b"
	dup.Phone = " 0555 " // dedup key trims whitespace

	got, changed := addAddress(addresses, dup)
	if changed {
		t.Fatal("duplicate add reported a change")
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("duplicate add altered the list: %+v", got)
	}

	// Repeating the same call stays a no-op.
	got, changed = addAddress(got, dup)
	if changed || len(got) != 1 {
		t.Fatalf("repeated duplicate add altered the list: %+v", got)
	}
}

func TestAddAddressDefaultClearsSiblings(t *testing.T) {
	addresses := []models.Address{
		{ID: "a", Phone: "0111", Line1: "Old St 1", IsDefault: true},
		{ID: "b", Phone: "0222", Line1: "Old St 2"},
	}
	got, changed := addAddress(addresses, models.Address{ID: "c", Phone: "0333", Line1: "New St 3", IsDefault: true})
	if !changed {
		t.Fatal("add reported no change")
	}
	if countDefaults(got) != 1 {
		t.Fatalf("expected exactly one default, got %d in %+v", countDefaults(got), got)
	}
	if !got[len(got)-1].IsDefault {
		t.Fatal("newly added address should carry the default flag")
	}
}

func TestUpdateAddressDefaultClearsSiblings(t *testing.T) {
	addresses := []models.Address{
		{ID: "a", Phone: "0111", Line1: "Old St 1", IsDefault: true},
		{ID: "b", Phone: "0222", Line1: "Old St 2"},
	}
	got, found := updateAddress(addresses, "b", models.Address{Phone: "0222", Line1: "Old St 2", IsDefault: true})
	if !found {
		t.Fatal("update did not find address b")
	}
	if countDefaults(got) != 1 {
		t.Fatalf("expected exactly one default, got %d in %+v", countDefaults(got), got)
	}
	if !got[1].IsDefault || got[0].IsDefault {
		t.Fatalf("default should have moved from a to b: %+v", got)
	}
}

func TestUpdateAddressPreservesIdentity(t *testing.T) {
	addresses := []models.Address{{ID: "a", Phone: "0111", Line1: "Old St 1"}}
	got, found := updateAddress(addresses, "a", models.Address{ID: "hijack", Phone: "0999", Line1: "New St 9"})
	if !found {
		t.Fatal("update did not find address a")
	}
	if got[0].ID != "a" {
		t.Fatalf("update must not rewrite the address id, got %q", got[0].ID)
	}
	if got[0].Phone != "0999" {
		t.Fatalf("patched field not applied: %+v", got[0])
	}
}

func TestUpdateAddressMissing(t *testing.T) {
	if _, found := updateAddress([]models.Address{{ID: "a"}}, "missing", models.Address{}); found {
		t.Fatal("update of a missing id should report not found")
	}
}

func TestDeleteAddressPromotion(t *testing.T) {
	base := []models.Address{
		{ID: "a", IsDefault: true},
		{ID: "b"},
	}

	got, found := deleteAddress(append([]models.Address(nil), base...), "a", false)
	if !found {
		t.Fatal("delete did not find address a")
	}
	if countDefaults(got) != 0 {
		t.Fatalf("without promotion no address should be default: %+v", got)
	}

	got, found = deleteAddress(append([]models.Address(nil), base...), "a", true)
	if !found {
		t.Fatal("delete did not find address a")
	}
	if len(got) != 1 || !got[0].IsDefault || got[0].ID != "b" {
		t.Fatalf("with promotion the first survivor should be default: %+v", got)
	}
}

// Two writers both flag a different address as default from the same snapshot.
// The revision filter lets only one write land; the loser retries from the
// winner's state, and exactly one default survives.
func TestConcurrentDefaultWritersConverge(t *testing.T) {
	base := []models.Address{
		{ID: "a", Phone: "0111", Line1: "St 1", IsDefault: true},
		{ID: "b", Phone: "0222", Line1: "St 2"},
		{ID: "c", Phone: "0333", Line1: "St 3"},
	}

	winner, _ := updateAddress(append([]models.Address(nil), base...), "b", models.Address{Phone: "0222", Line1: "St 2", IsDefault: true})

	// The loser's write is rejected by writeAddresses (stale addressRev) and
	// the handler retries against the committed state.
	final, found := updateAddress(append([]models.Address(nil), winner...), "c", models.Address{Phone: "0333", Line1: "St 3", IsDefault: true})
	if !found {
		t.Fatal("retry did not find address c")
	}
	if countDefaults(final) != 1 {
		t.Fatalf("expected exactly one default after converging writers, got %d in %+v", countDefaults(final), final)
	}
	if !final[2].IsDefault {
		t.Fatalf("last committed writer should hold the default: %+v", final)
	}
}

func TestRevFilterAcceptsUnversionedUsers(t *testing.T) {
	userID := primitive.NewObjectID()

	// Users provisioned before their first address write carry no addressRev
	// field, and an equality match on 0 would never hit them.
	got := revFilter(userID, 0)
	want := bson.M{
		"_id": userID,
		"$or": []bson.M{
			{"addressRev": 0},
			{"addressRev": bson.M{"$exists": false}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rev 0 filter = %v, want %v", got, want)
	}

	got = revFilter(userID, 7)
	want = bson.M{"_id": userID, "addressRev": int64(7)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rev 7 filter = %v, want %v", got, want)
	}
}

func TestClearDefaultLeavesNoDefault(t *testing.T) {
	addresses := []models.Address{
		{ID: "a", IsDefault: true},
		{ID: "b"},
		{ID: "c", IsDefault: true},
	}
	for _, addr := range clearDefault(addresses) {
		if addr.IsDefault {
			t.Fatalf("address %s still default after clear", addr.ID)
		}
	}
}

func TestIndexOf(t *testing.T) {
	addresses := []models.Address{{ID: "a"}, {ID: "b"}}
	if got := indexOf(addresses, "b"); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if got := indexOf(addresses, "missing"); got != -1 {
		t.Fatalf("expected -1 for missing id, got %d", got)
	}
}
