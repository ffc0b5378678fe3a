package transport

import (
	"io"
	"mime/multipart"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/tasknest/backend/domain"
)

// TodoForm is the parsed multipart shape shared by create and update
// requests. Scalar fields are nil when the form did not supply them; Parts
// carries every file part verbatim so the validator sees the full
// submission, unknown fields and duplicates included.
type TodoForm struct {
	Text      *string
	DueDate   *time.Time
	Completed *bool
	Parts     []domain.Part
}

// ParseTodoForm reads the request's multipart form entirely into memory.
// Buffers never touch local disk.
func ParseTodoForm(ctx *fasthttp.RequestCtx) (*TodoForm, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "multipart form expected", err)
	}

	parsed := &TodoForm{}

	if vals := form.Value["text"]; len(vals) > 0 {
		parsed.Text = &vals[0]
	}
	if vals := form.Value["dueDate"]; len(vals) > 0 && vals[0] != "" {
		if due, ok := parseDate(vals[0]); ok {
			parsed.DueDate = &due
		}
	}
	if vals := form.Value["completed"]; len(vals) > 0 {
		completed := vals[0] == "true"
		parsed.Completed = &completed
	}

	for field, headers := range form.File {
		for _, header := range headers {
			data, err := readPart(header)
			if err != nil {
				return nil, domain.WrapError(domain.ErrCodeInvalid, "unreadable multipart part", err)
			}
			parsed.Parts = append(parsed.Parts, domain.Part{
				Field:       field,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	return parsed, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
