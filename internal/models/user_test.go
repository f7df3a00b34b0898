package models

import "testing"

func TestAddressMatchesOnDedupKey(t *testing.T) {
	a := Address{
		FirstName:  "Ada",
		LastName:   "Aksoy",
		Phone:      "05551112233",
		Line1:      "Moda Cad. 12/3",
		PostalCode: "34710",
		Province:   "Istanbul",
		City:       "Kadikoy",
	}

	b := a
	b.ID = "different-id"
	b.IsDefault = true
	b.Province = "Ankara" // not part of the key
	if !a.Matches(b) {
		t.Fatal("expected addresses equal on the dedup key to match")
	}

	c := a
	c.Line1 = "Moda Cad. 12/4"
	if a.Matches(c) {
		t.Fatal("expected differing line1 to break the match")
	}
}

func TestAddressKeyTrimsWhitespace(t *testing.T) {
	a := Address{FirstName: " Ada ", Phone: "0555 ", Line1: " x ", PostalCode: "1", LastName: "A"}
	b := Address{FirstName: "Ada", Phone: "0555", Line1: "x", PostalCode: "1", LastName: "A"}
	if a.Key() != b.Key() {
		t.Fatalf("expected trimmed keys to be equal: %+v vs %+v", a.Key(), b.Key())
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"pending", "complete", "cancelled", "returned"} {
		if _, err := ParseOrderStatus(valid); err != nil {
			t.Fatalf("expected %q to parse: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "Pending", "shipped", "deleted"} {
		if _, err := ParseOrderStatus(invalid); err == nil {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}
