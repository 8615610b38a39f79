package identity

import (
	"testing"

	"carfinder/models"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Cars.com/vehicledetail/123/?utm_source=x#photos", "https://cars.com/vehicledetail/123"},
		{"//sfbay.craigslist.org/cto/d/honda-civic/7712.html", "https://sfbay.craigslist.org/cto/d/honda-civic/7712.html"},
		{"https://offerup.com/item/detail/99?id=99&ref=feed", "https://offerup.com/item/detail/99?id=99"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := CanonicalURL(tt.in); got != tt.want {
			t.Fatalf("CanonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFingerprint_IgnoresFormatting(t *testing.T) {
	a := &models.Listing{Source: "Cars.com", Title: "2015 Honda Civic  EX", Price: "$12,500", Mileage: "80,000 mi."}
	b := &models.Listing{Source: "cars.com", Title: "2015 honda civic ex", Price: "12500", Mileage: "80000"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected equal fingerprints")
	}

	c := &models.Listing{Source: "Cars.com", Title: "2015 Honda Civic EX", Price: "$13,500"}
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatalf("expected different fingerprints for different prices")
	}
}
