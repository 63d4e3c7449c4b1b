package pipeline

import (
	"strings"

	"cmdjob/internal"
)

// Extract runs the full per-source pipeline on raw PDF text:
// normalize, pull PO and lot number, parse the item table, resolve versions,
// classify. Items whose tag set is empty are dropped. Parsing gaps accumulate
// as warnings; only text with zero usable content is an error.
func Extract(raw string) (internal.POExtraction, error) {
	text := NormalizeText(raw)
	if strings.TrimSpace(text) == "" {
		return internal.POExtraction{}, internal.ErrUnreadableSource
	}

	var out internal.POExtraction

	if po, ok := ExtractPONumber(text); ok {
		out.PONumber = po
	} else {
		out.Warnings = append(out.Warnings, missingFieldWarning("po number"))
	}
	if lot, ok := ExtractLotNumber(text); ok {
		out.LotNumber = lot
	} else {
		out.Warnings = append(out.Warnings, missingFieldWarning("lot number"))
	}

	items, warns := ParseItemTable(text)
	out.Warnings = append(out.Warnings, warns...)

	// Excluded rows are dropped before version resolution so they cannot
	// produce unresolved-version noise.
	kept := make([]internal.ItemRecord, 0, len(items))
	for _, it := range items {
		tags := Classify(it.Code)
		if len(tags) == 0 {
			continue
		}
		it.Tags = tags
		kept = append(kept, it)
	}

	kept, warns = ResolveVersions(text, kept)
	out.Warnings = append(out.Warnings, warns...)
	out.Items = kept

	return out, nil
}
