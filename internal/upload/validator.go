// Package upload validates multipart attachment submissions before any byte
// reaches the object store. Validation is pure and synchronous.
package upload

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tasknest/backend/domain"
)

const defaultMaxBytes = 10 * 1024 * 1024

// Limits carries the per-field size ceilings. Zero values fall back to 10 MiB.
type Limits struct {
	MaxImageBytes int64
	MaxPDFBytes   int64
}

// Submission holds the accepted parts of one request, at most one per field.
type Submission struct {
	Image *domain.Part
	PDF   *domain.Part
}

// Empty reports whether the submission carries no attachment at all.
func (s Submission) Empty() bool {
	return s.Image == nil && s.PDF == nil
}

// Validator accepts or rejects multipart parts by field identity, declared
// media type and buffer size.
type Validator struct {
	limits Limits
}

func NewValidator(limits Limits) *Validator {
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = defaultMaxBytes
	}
	if limits.MaxPDFBytes <= 0 {
		limits.MaxPDFBytes = defaultMaxBytes
	}
	return &Validator{limits: limits}
}

// Validate inspects every part and either returns the accepted submission or
// an aggregate of all per-part failures. A failed submission yields an empty
// Submission so no partially accepted buffer can leak to storage.
func (v *Validator) Validate(parts []domain.Part) (Submission, error) {
	var (
		sub    Submission
		result *multierror.Error
	)

	for i := range parts {
		part := &parts[i]
		if err := v.checkPart(part, sub); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		switch part.Field {
		case domain.FieldImage:
			sub.Image = part
		case domain.FieldPDF:
			sub.PDF = part
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (v *Validator) checkPart(part *domain.Part, sub Submission) error {
	switch part.Field {
	case domain.FieldImage:
		if sub.Image != nil {
			return duplicateField(part.Field)
		}
		if !strings.HasPrefix(part.ContentType, "image/") {
			return unsupportedMedia(part.Field, part.ContentType)
		}
		if int64(len(part.Data)) > v.limits.MaxImageBytes {
			return sizeLimit(part.Field, len(part.Data), v.limits.MaxImageBytes)
		}
	case domain.FieldPDF:
		if sub.PDF != nil {
			return duplicateField(part.Field)
		}
		if part.ContentType != "application/pdf" {
			return unsupportedMedia(part.Field, part.ContentType)
		}
		if int64(len(part.Data)) > v.limits.MaxPDFBytes {
			return sizeLimit(part.Field, len(part.Data), v.limits.MaxPDFBytes)
		}
	default:
		return domain.NewError(domain.ErrCodeUnsupportedField,
			fmt.Sprintf("unsupported field %q", part.Field))
	}

	if len(part.Data) == 0 {
		return domain.NewError(domain.ErrCodeEmptyPayload,
			fmt.Sprintf("field %q carries an empty payload", part.Field))
	}
	return nil
}

func duplicateField(field string) error {
	return domain.NewError(domain.ErrCodeDuplicateField,
		fmt.Sprintf("field %q submitted more than once", field))
}

func unsupportedMedia(field, contentType string) error {
	return domain.NewError(domain.ErrCodeUnsupportedMedia,
		fmt.Sprintf("field %q does not accept content type %q", field, contentType))
}

func sizeLimit(field string, got int, limit int64) error {
	return domain.NewError(domain.ErrCodeSizeLimit,
		fmt.Sprintf("field %q exceeds the %d byte limit (%d bytes)", field, limit, got))
}
