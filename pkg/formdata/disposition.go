package formdata

import (
	"mime"
)

const dispositionFormData = "form-data"

// Disposition is the parsed Content-Disposition header of a part.
type Disposition struct {
	Type   string
	Params map[string]string
}

// FormName returns the name parameter.
func (d Disposition) FormName() string {
	return d.Params["name"]
}

// FileName returns the filename parameter exactly as sent.
func (d Disposition) FileName() string {
	return d.Params["filename"]
}

// ParseDisposition parses a Content-Disposition header value.
func ParseDisposition(value string) (Disposition, error) {
	typ, params, err := mime.ParseMediaType(value)
	if err != nil {
		return Disposition{}, err
	}
	return Disposition{Type: typ, Params: params}, nil
}

type FieldKind int

const (
	OtherField FieldKind = iota
	FileField
)

func (k FieldKind) String() string {
	if k == FileField {
		return "file"
	}
	return "field"
}

// Classification tells how a part should be handled.
type Classification struct {
	Kind     FieldKind
	FormName string
	FileName string
}

// Classify reports whether p carries a file. A part is a file iff its
// disposition is form-data with a non-empty filename. Missing or unparseable
// headers are plain fields, never errors.
func Classify(p *Part) Classification {
	value := p.Header.Get("Content-Disposition")
	if value == "" {
		return Classification{Kind: OtherField}
	}

	d, err := ParseDisposition(value)
	if err != nil {
		return Classification{Kind: OtherField}
	}
	if d.Type != dispositionFormData || d.FileName() == "" {
		return Classification{Kind: OtherField, FormName: d.FormName()}
	}

	return Classification{
		Kind:     FileField,
		FormName: d.FormName(),
		FileName: d.FileName(),
	}
}
