package pipeline

import (
	"testing"

	"cmdjob/internal"
)

func TestParseItemTableQtyLeading(t *testing.T) {
	text := "Quantity Item Details Version\n" +
		"2 C.1001.2 Bracket assembly 3\n" +
		"1,000 aprevo002 Filler row 1\n" +
		"5 3BAT Battery pack 2\n" +
		"\n" +
		"Total 1,007"
	items, warns := ParseItemTable(text)
	if len(warns) != 0 {
		t.Fatalf("warns=%v", warns)
	}
	if len(items) != 3 {
		t.Fatalf("len=%d items=%+v", len(items), items)
	}
	if items[0].Code != "C.1001.2" || items[0].Quantity != "2" || items[0].Description != "Bracket assembly" || items[0].VersionTable != "3" {
		t.Fatalf("item0=%+v", items[0])
	}
	if items[1].Code != "aprevo002" || items[1].Quantity != "1000" {
		t.Fatalf("item1=%+v", items[1])
	}
	if items[2].Code != "3BAT" || items[2].VersionTable != "2" {
		t.Fatalf("item2=%+v", items[2])
	}
}

func TestParseItemTableCodeLeading(t *testing.T) {
	text := "Item Qty Description\n" +
		"C100 Widget 10\n" +
		"3BAT Battery 2\n" +
		"---- not a row ----\n" +
		"X1 Spacer kit large 1,500"
	items, _ := ParseItemTable(text)
	if len(items) != 3 {
		t.Fatalf("len=%d items=%+v", len(items), items)
	}
	if items[0].Code != "C100" || items[0].Quantity != "10" || items[0].Description != "Widget" {
		t.Fatalf("item0=%+v", items[0])
	}
	if items[2].Code != "X1" || items[2].Quantity != "1500" || items[2].Description != "Spacer kit large" {
		t.Fatalf("item2=%+v", items[2])
	}
}

func TestParseItemTableAggregatesDuplicates(t *testing.T) {
	text := "Quantity Item Details Version\n" +
		"2 C.1001.2 Bracket assembly 3\n" +
		"3 C.1001.2 Bracket assembly 3\n" +
		"1 C.1001.2 Different details 3"
	items, warns := ParseItemTable(text)
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].Quantity != "6" {
		t.Fatalf("quantity=%q", items[0].Quantity)
	}
	if items[0].Description != "Bracket assembly" {
		t.Fatalf("description=%q", items[0].Description)
	}
	if len(warns) != 1 || warns[0].Kind != internal.WarnDetailConflict {
		t.Fatalf("warns=%v", warns)
	}
}

func TestParseItemTableNoHeader(t *testing.T) {
	items, warns := ParseItemTable("just a letter\nwith some lines\nno table anywhere")
	if len(items) != 0 {
		t.Fatalf("items=%+v", items)
	}
	if len(warns) != 1 || warns[0].Kind != internal.WarnEmptyItemTable {
		t.Fatalf("warns=%v", warns)
	}
}

func TestParseItemTableHeaderButNoRows(t *testing.T) {
	items, warns := ParseItemTable("Item Qty Description\nTotal 0")
	if len(items) != 0 {
		t.Fatalf("items=%+v", items)
	}
	if len(warns) != 1 || warns[0].Kind != internal.WarnEmptyItemTable {
		t.Fatalf("warns=%v", warns)
	}
}
