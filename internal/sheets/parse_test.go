package sheets

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	body := "ProductID , Title,PrimaryStoreForGraph\n" +
		"p1, Phone ,StoreA\n" +
		"\n" +
		"   \n" +
		"p2,\"Laptop, 16\"\"\",StoreB\r\n"

	rows, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []Row{
		{"ProductID": "p1", "Title": "Phone", "PrimaryStoreForGraph": "StoreA"},
		{"ProductID": "p2", "Title": "Laptop, 16\"", "PrimaryStoreForGraph": "StoreB"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows:\n got %#v\nwant %#v", rows, want)
	}
}

func TestParseByteOrderMark(t *testing.T) {
	plain := "ProductID,Title\np1,Phone\n"
	withBOM := "\xEF\xBB\xBF" + plain

	a, err := Parse([]byte(plain))
	if err != nil {
		t.Fatalf("Parse plain: %v", err)
	}
	b, err := Parse([]byte(withBOM))
	if err != nil {
		t.Fatalf("Parse bom: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("BOM changed the result: %#v vs %#v", a, b)
	}
	if _, ok := b[0]["ProductID"]; !ok {
		t.Fatalf("first header polluted by BOM: %#v", b[0])
	}
}

func TestParseRaggedRows(t *testing.T) {
	body := "ProductID,StoreName,CurrentPrice\n" +
		"p1,StoreA\n" +
		"p2,StoreB,100,extra,cells\n"

	rows, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if v, ok := rows[0]["CurrentPrice"]; !ok || v != "" {
		t.Fatalf("missing trailing value should be empty, got %q ok=%v", v, ok)
	}
	if len(rows[1]) != 3 || rows[1]["CurrentPrice"] != "100" {
		t.Fatalf("extra values should be dropped, got %#v", rows[1])
	}
}

func TestParseEmpty(t *testing.T) {
	for _, body := range []string{"", "ProductID,Title\n", "\xEF\xBB\xBF"} {
		rows, err := Parse([]byte(body))
		if err != nil {
			t.Fatalf("Parse(%q): %v", body, err)
		}
		if len(rows) != 0 {
			t.Fatalf("Parse(%q): expected no rows, got %d", body, len(rows))
		}
	}
}

func TestParseUnbalancedQuoteStaysOnItsLine(t *testing.T) {
	body := "ProductID,Title,PrimaryStoreForGraph\n" +
		"p1,\"Phone 6.1 inch,StoreA\n" +
		"p2,Laptop,StoreB\n" +
		"p3,Tablet,StoreC\n"

	rows, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %#v", len(rows), rows)
	}
	if rows[0]["ProductID"] != "p1" {
		t.Fatalf("damaged row lost its id: %#v", rows[0])
	}
	want := []Row{
		{"ProductID": "p2", "Title": "Laptop", "PrimaryStoreForGraph": "StoreB"},
		{"ProductID": "p3", "Title": "Tablet", "PrimaryStoreForGraph": "StoreC"},
	}
	if !reflect.DeepEqual(rows[1:], want) {
		t.Fatalf("rows after the broken line changed:\n got %#v\nwant %#v", rows[1:], want)
	}
}
