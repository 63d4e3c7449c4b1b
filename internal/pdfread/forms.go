package pdfread

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FormFields returns the AcroForm text fields of a PDF as name/value pairs.
// FORM-019 lot sheets are often filled forms, and a field value beats any
// regex over rendered text. Missing AcroForm is not an error.
func FormFields(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf context %s: %w", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count %s: %w", path, err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("pdf catalog %s: %w", path, err)
	}

	fields := map[string]string{}
	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return fields, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return fields, nil
	}
	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return fields, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return fields, nil
	}

	for _, fieldRef := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}
		name := ""
		if nameObj, found := fieldDict.Find("T"); found {
			if s, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
				name = s
			}
		}
		if name == "" {
			continue
		}
		if valueObj, found := fieldDict.Find("V"); found {
			if s, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
				fields[name] = s
			}
		}
	}

	return fields, nil
}
