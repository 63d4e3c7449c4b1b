package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cmdjob/internal"
	"cmdjob/internal/util"
)

var (
	reTableHeader = regexp.MustCompile(`(?i)\bitems?\b.*\b(qty|quantity|description|details|table)\b|\b(qty|quantity)\b.*\bitems?\b`)
	reTableFooter = regexp.MustCompile(`(?i)^(total\b|sub\s?total\b|grand total\b|page \d|primary part versions|derived part versions)`)

	// Original PO layout: quantity first, then code, free-text details and a
	// trailing version column.
	reQtyRow = regexp.MustCompile(`^(\d{1,3}(?:,\d{3})*|\d+)\s+([A-Za-z0-9._\-]+)\s+(.+?)\s+(\d+)(?:\s|$)`)
)

// ParseItemTable locates the item table and parses its rows. Rows that match
// neither row shape are skipped. A missing table is a warning, not an error.
func ParseItemTable(text string) ([]internal.ItemRecord, []internal.Warning) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if reTableHeader.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, []internal.Warning{{Kind: internal.WarnEmptyItemTable, Message: "item table header not found"}}
	}

	var warns []internal.Warning
	var order []string
	byCode := map[string]*internal.ItemRecord{}

	add := func(rec internal.ItemRecord) {
		key := util.NormalizeCode(rec.Code)
		prev, ok := byCode[key]
		if !ok {
			r := rec
			byCode[key] = &r
			order = append(order, key)
			return
		}
		if a, aok := util.ParseQuantity(prev.Quantity); aok {
			if b, bok := util.ParseQuantity(rec.Quantity); bok {
				prev.Quantity = strconv.Itoa(a + b)
			}
		}
		if prev.Description == "" {
			prev.Description = rec.Description
		} else if rec.Description != "" && rec.Description != prev.Description {
			warns = append(warns, internal.Warning{
				Kind:    internal.WarnDetailConflict,
				Message: fmt.Sprintf("conflicting details for %s; keeping first", rec.Code),
			})
		}
		if prev.VersionTable == "" {
			prev.VersionTable = rec.VersionTable
		}
	}

	seenRow := false
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			if seenRow {
				break
			}
			continue
		}
		if reTableFooter.MatchString(line) {
			break
		}
		if rec, ok := parseQtyRow(line); ok {
			add(rec)
			seenRow = true
			continue
		}
		if rec, ok := parseCodeRow(line); ok {
			add(rec)
			seenRow = true
		}
	}

	out := make([]internal.ItemRecord, 0, len(order))
	for _, key := range order {
		out = append(out, *byCode[key])
	}
	if len(out) == 0 {
		warns = append(warns, internal.Warning{Kind: internal.WarnEmptyItemTable, Message: "no item rows matched in table region"})
	}
	return out, warns
}

// CountItemRows counts lines that look like item rows anywhere in the text.
// Used to score candidate PDFs, so no header is required.
func CountItemRows(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if _, ok := parseQtyRow(line); ok {
			n++
			continue
		}
		if _, ok := parseCodeRow(line); ok {
			n++
		}
	}
	return n
}

func parseQtyRow(line string) (internal.ItemRecord, bool) {
	m := reQtyRow.FindStringSubmatch(line)
	if m == nil {
		return internal.ItemRecord{}, false
	}
	return internal.ItemRecord{
		Code:         m[2],
		Description:  strings.TrimSpace(m[3]),
		Quantity:     strings.ReplaceAll(m[1], ",", ""),
		VersionTable: m[4],
	}, true
}

// Fallback row shape: code first, quantity taken from the last numeric-looking
// token, everything between is description.
func parseCodeRow(line string) (internal.ItemRecord, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return internal.ItemRecord{}, false
	}
	code := tokens[0]
	if !util.LooksLikeCode(code) || util.NumericLooking(code) {
		return internal.ItemRecord{}, false
	}

	qtyIdx := -1
	for i := len(tokens) - 1; i >= 1; i-- {
		if util.NumericLooking(tokens[i]) {
			qtyIdx = i
			break
		}
	}

	rec := internal.ItemRecord{Code: code}
	rest := make([]string, 0, len(tokens)-1)
	for i, tok := range tokens[1:] {
		if i+1 == qtyIdx {
			rec.Quantity = strings.ReplaceAll(tok, ",", "")
			continue
		}
		rest = append(rest, tok)
	}
	rec.Description = strings.Join(rest, " ")
	return rec, true
}
