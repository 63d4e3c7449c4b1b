package job

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cmdjob/internal"
	"cmdjob/internal/config"
	"cmdjob/internal/pdfread"
	"cmdjob/internal/pipeline"
	"cmdjob/internal/templates"
	"cmdjob/internal/util"
)

// Builder assembles MBR and S&C output folders for PO source folders.
type Builder struct {
	Cfg config.Config
	Map templates.Map
	Log *slog.Logger
}

// ProcessPO builds one PO source folder: pick the PDFs, extract, copy and
// verify sources, fill documents, write the audit CSV. With dryRun only the
// extraction runs and nothing is written.
func (b *Builder) ProcessPO(sourceDir, jobNumber string, sterile, dryRun bool) POResult {
	result := POResult{SourceDir: filepath.Base(sourceDir)}

	poFromFolder, _ := POTokenFromName(result.SourceDir)

	itemsPDF, err := PickItemsPDF(sourceDir, poFromFolder)
	if err != nil {
		result.Err = err
		return result
	}
	b.Log.Info("items pdf picked", "source", result.SourceDir, "pdf", filepath.Base(itemsPDF))

	raw, err := pdfread.Text(itemsPDF)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", internal.ErrUnreadableSource, err)
		return result
	}
	ext, err := pipeline.Extract(raw)
	if err != nil {
		result.Err = fmt.Errorf("extract %s: %w", filepath.Base(itemsPDF), err)
		return result
	}
	result.Items = ext.Items
	result.Warnings = ext.Warnings

	result.PONumber = ext.PONumber
	if result.PONumber == "" {
		if poFromFolder != "" {
			result.PONumber = poFromFolder
		} else {
			result.PONumber = internal.PlaceholderPO
		}
	}
	result.LotNumber = b.resolveLot(sourceDir, ext.LotNumber)

	if dryRun {
		return result
	}

	cmdRoot := filepath.Dir(sourceDir)
	mbrDir := filepath.Join(cmdRoot, fmt.Sprintf("%s_%s_VSR MBR", result.PONumber, result.LotNumber))
	scDir := filepath.Join(cmdRoot, fmt.Sprintf("%s_%s_VSR S&C", result.PONumber, result.LotNumber))

	if b.Cfg.ResetSCOnRerun {
		for _, dir := range []string{mbrDir, scDir} {
			if err := os.RemoveAll(dir); err != nil {
				result.Err = fmt.Errorf("reset %s: %w", dir, err)
				return result
			}
		}
	}
	if err := os.MkdirAll(mbrDir, 0o755); err != nil {
		result.Err = fmt.Errorf("create %s: %w", mbrDir, err)
		return result
	}

	if err := CopyAndVerify(sourceDir, scDir); err != nil {
		result.Err = err
		return result
	}

	if err := b.fillCoC(mbrDir, &result, jobNumber, sterile); err != nil {
		result.Err = err
		return result
	}
	if err := b.fillWorkbooks(mbrDir, &result, jobNumber); err != nil {
		result.Err = err
		return result
	}
	if err := WriteAuditCSV(filepath.Join(mbrDir, "item_audit.csv"), result.Items); err != nil {
		result.Err = err
		return result
	}

	if b.Cfg.RemoveSourceAfterSuccess {
		if err := os.RemoveAll(sourceDir); err != nil {
			result.Err = fmt.Errorf("remove source %s: %w", sourceDir, err)
			return result
		}
	}
	return result
}

// resolveLot falls through lot sources in order: items-PDF text (already
// extracted), FORM-019 form fields, FORM-019 text, filename token, placeholder.
func (b *Builder) resolveLot(sourceDir, fromText string) string {
	if fromText != "" {
		return fromText
	}

	form, ok := FindForm019(sourceDir)
	if ok {
		if fields, err := pdfread.FormFields(form); err == nil {
			for _, name := range sortedKeys(fields) {
				if strings.Contains(strings.ToLower(name), "lot") && strings.TrimSpace(fields[name]) != "" {
					return strings.TrimSpace(fields[name])
				}
			}
		}
		if text, err := pdfread.Text(form); err == nil {
			if lot, ok := pipeline.ExtractLotNumber(pipeline.NormalizeText(text)); ok {
				return lot
			}
		}
		if lot, ok := LotFromFilename(filepath.Base(form)); ok {
			return lot
		}
	}

	if pdfs, err := listPDFs(sourceDir); err == nil {
		for _, path := range pdfs {
			if lot, ok := LotFromFilename(filepath.Base(path)); ok {
				return lot
			}
		}
	}
	return internal.PlaceholderLot
}

func (b *Builder) fillCoC(mbrDir string, result *POResult, jobNumber string, sterile bool) error {
	name := b.Map.CoCFor(sterile)
	if name == "" {
		return fmt.Errorf("%w: no cofc template mapped (sterile=%v)", internal.ErrTemplateMissing, sterile)
	}
	src := filepath.Join(b.Cfg.TemplateRoot, name)
	dst := filepath.Join(mbrDir, fmt.Sprintf("%s_%s_CoC.docx", result.PONumber, result.LotNumber))

	values := map[string]string{
		"Job Number": jobNumber,
		"Lot Number": result.LotNumber,
	}
	for i, item := range result.Items {
		n := strconv.Itoa(i + 1)
		values["Item "+n] = item.Code
		values["Version "+n] = item.Version
		values["Details "+n] = item.Description
		values["Quantity "+n] = item.Quantity
		values["Traveler Number "+n] = fmt.Sprintf("%s-%02d", result.PONumber, i+1)
		if digitLeading(item.Code) {
			values["Job Number "+n] = "N/A"
			values["Lot Number "+n] = "N/A"
		} else {
			values["Job Number "+n] = jobNumber
			values["Lot Number "+n] = result.LotNumber
		}
	}

	if err := templates.FillDocx(src, dst, values); err != nil {
		return err
	}
	return templates.CheckDocxPlaceholders(dst)
}

func (b *Builder) fillWorkbooks(mbrDir string, result *POResult, jobNumber string) error {
	groups := map[string][]internal.ItemRecord{}
	for _, item := range result.Items {
		if !item.Tags.Has(internal.TagQC) && !item.Tags.Has(internal.TagDimension) {
			continue
		}
		prefix := strings.ToUpper(item.Code[:1])
		groups[prefix] = append(groups[prefix], item)
	}

	for _, prefix := range sortedGroupKeys(groups) {
		items := groups[prefix]
		pt, ok := b.Map.Lookup(prefix)
		if !ok {
			result.Warnings = append(result.Warnings, internal.Warning{
				Kind:    internal.WarnPrefixUnmapped,
				Message: fmt.Sprintf("no templates mapped for prefix %s; skipping %d item(s)", prefix, len(items)),
			})
			continue
		}

		total := 0
		values := map[string]string{
			"Job Number": jobNumber,
			"Lot Number": result.LotNumber,
		}
		for i, item := range items {
			values["Item "+strconv.Itoa(i+1)] = item.Code
			if qty, ok := util.ParseQuantity(item.Quantity); ok {
				total += qty
			}
		}
		values["Total Quantity"] = strconv.Itoa(total)

		fills := []struct{ template, suffix string }{
			{pt.FinalQC, "Final_QC"},
			{pt.Dimension, "Dimension"},
		}
		for _, fill := range fills {
			src := filepath.Join(b.Cfg.TemplateRoot, fill.template)
			dst := filepath.Join(mbrDir, fmt.Sprintf("%s_%s_%s_%s%s",
				result.PONumber, result.LotNumber, prefix, fill.suffix, filepath.Ext(fill.template)))
			if err := templates.FillWorkbook(src, dst, values); err != nil {
				return err
			}
			if err := templates.CheckWorkbookPlaceholders(dst); err != nil {
				return err
			}
		}
	}
	return nil
}

func digitLeading(code string) bool {
	return code != "" && code[0] >= '0' && code[0] <= '9'
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGroupKeys(m map[string][]internal.ItemRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
