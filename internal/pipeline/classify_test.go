package pipeline

import (
	"testing"

	"cmdjob/internal"
)

func TestClassifyExcluded(t *testing.T) {
	for _, code := range []string{"aprevo002", "APREVO7", "Aprevo123"} {
		if tags := Classify(code); len(tags) != 0 {
			t.Fatalf("%s: tags=%v", code, tags)
		}
	}
}

func TestClassifyNumericLeading(t *testing.T) {
	for _, code := range []string{"3BAT", "100-X", "9"} {
		tags := Classify(code)
		if len(tags) != 1 || tags[0] != internal.TagCoC {
			t.Fatalf("%s: tags=%v", code, tags)
		}
	}
}

func TestClassifyFullSet(t *testing.T) {
	for _, code := range []string{"C100", "C.1001.2", "aprevoX1", "x9"} {
		tags := Classify(code)
		if len(tags) != 3 {
			t.Fatalf("%s: tags=%v", code, tags)
		}
		if !tags.Has(internal.TagCoC) || !tags.Has(internal.TagQC) || !tags.Has(internal.TagDimension) {
			t.Fatalf("%s: tags=%v", code, tags)
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	if tags := Classify("  "); tags != nil {
		t.Fatalf("tags=%v", tags)
	}
}
