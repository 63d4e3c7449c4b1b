package internal

type DocTag string

const (
	TagCoC       DocTag = "CoC"
	TagQC        DocTag = "QC"
	TagDimension DocTag = "Dimension"
)

// TagSet keeps CoC, QC, Dimension order so joined output is stable.
type TagSet []DocTag

func (s TagSet) Has(tag DocTag) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

func (s TagSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, t := range s {
		out = append(out, string(t))
	}
	return out
}

type ItemRecord struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity"`
	Version      string `json:"version,omitempty"`
	VersionTable string `json:"versionTable,omitempty"`
	Tags         TagSet `json:"tags"`
}

type WarnKind string

const (
	WarnMissingField      WarnKind = "missing_field"
	WarnEmptyItemTable    WarnKind = "empty_item_table"
	WarnUnresolvedVersion WarnKind = "unresolved_version"
	WarnDetailConflict    WarnKind = "detail_conflict"
	WarnPrefixUnmapped    WarnKind = "prefix_unmapped"
)

type Warning struct {
	Kind    WarnKind `json:"kind"`
	Message string   `json:"message"`
}

type POExtraction struct {
	PONumber  string       `json:"poNumber"`
	LotNumber string       `json:"lotNumber"`
	Items     []ItemRecord `json:"items"`
	Warnings  []Warning    `json:"warnings,omitempty"`
}

const (
	PlaceholderPO  = "PO_UNKNOWN"
	PlaceholderLot = "LOT_UNKNOWN"
)

type RunRow struct {
	ID          int64
	TraceID     string
	JobNumber   string
	JobFolder   string
	Status      string
	CountsJSON  string
	TimingsJSON string
	CreatedAt   string
}

type PORow struct {
	ID           int64
	RunID        int64
	SourceDir    string
	PONumber     string
	LotNumber    string
	Status       string
	ItemCount    int
	WarningsJSON string
	ErrorText    string
}
