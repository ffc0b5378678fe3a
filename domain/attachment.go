package domain

// Kind tags how the object store serves a stored binary. Images get image
// retrieval semantics; everything else is stored as an opaque raw object.
type Kind string

const (
	KindImage Kind = "image"
	KindRaw   Kind = "raw"
)

// Multipart field names the attachment pipeline accepts.
const (
	FieldImage = "image"
	FieldPDF   = "pdf"
)

// Part is one named field of a multipart submission. The buffer lives in
// request-scoped memory only and is never written to local disk.
type Part struct {
	Field       string
	ContentType string
	Data        []byte
}

// Kind maps the part's field name to its storage kind.
func (p Part) Kind() Kind {
	if p.Field == FieldImage {
		return KindImage
	}
	return KindRaw
}
