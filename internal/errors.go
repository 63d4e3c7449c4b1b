package internal

import "errors"

var (
	ErrUnreadableSource = errors.New("no usable text in source")
	ErrNoSourcePDF      = errors.New("no source pdf found")
	ErrCopyMismatch     = errors.New("copy verification mismatch")
	ErrPlaceholderLeft  = errors.New("placeholder braces remain")
	ErrTemplateMissing  = errors.New("template file missing")
)
