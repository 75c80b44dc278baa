package model

import "testing"

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Rs. 1,200", "1200"},
		{"NPR 45,999.50", "45999.50"},
		{"1200", "1200"},
		{"  $ 12.5 ", "12.5"},
		{"Rs.1,200.", "1200"},
		{"out of stock", ""},
		{"", ""},
		{"١٢٣", ""},
	}
	for _, tc := range cases {
		if got := NormalizePrice(tc.in); got != tc.want {
			t.Errorf("NormalizePrice(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	d, ok := ParsePrice("Rs. 1,200")
	if !ok || d.String() != "1200" {
		t.Fatalf("expected 1200, got %s ok=%v", d, ok)
	}

	if _, ok := ParsePrice("1.200.50"); ok {
		t.Fatal("expected ambiguous price to be rejected")
	}
	if _, ok := ParsePrice("call for price"); ok {
		t.Fatal("expected price without digits to be rejected")
	}
}

func TestPrimaryOffer(t *testing.T) {
	r := &ProductRecord{
		ID:           "p1",
		PrimaryStore: "StoreB",
		Offers: []StoreOffer{
			{StoreName: "StoreA", ProductURL: "http://a"},
			{StoreName: "StoreB", ProductURL: "http://b1"},
			{StoreName: "StoreB", ProductURL: "http://b2"},
		},
	}
	o, ok := r.PrimaryOffer()
	if !ok || o.ProductURL != "http://b1" {
		t.Fatalf("expected first StoreB offer, got %+v ok=%v", o, ok)
	}

	r.PrimaryStore = "StoreC"
	if _, ok := r.PrimaryOffer(); ok {
		t.Fatal("expected no primary offer for unknown store")
	}
}
