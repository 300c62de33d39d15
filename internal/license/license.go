package license

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MediaType is the content type of every license response
const MediaType = "application/vnd.readium.lcp.license+json"

// MaxKeyLength bounds the byte length of a storage key
const MaxKeyLength = 255

var (
	// ErrMissingID is returned when a document has no non-empty string id
	ErrMissingID = errors.New("license JSON must include .id")

	// ErrInvalidKey is returned when the id cannot be used as a storage key
	ErrInvalidKey = errors.New("license id is not a valid storage key")
)

// Document is a validated license. Raw holds the bytes exactly as received.
type Document struct {
	ID  string `json:"id" validate:"required,storagekey"`
	Raw []byte `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("storagekey", func(fl validator.FieldLevel) bool {
		return ValidKey(fl.Field().String())
	})

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// ParseDocument checks that body is a JSON object carrying a usable id. The
// rest of the document is not looked at.
func ParseDocument(body []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingID, err)
	}

	raw, ok := fields["id"]
	if !ok {
		return nil, ErrMissingID
	}

	doc := &Document{Raw: body}
	if err := json.Unmarshal(raw, &doc.ID); err != nil {
		return nil, fmt.Errorf("%w: id is not a string", ErrMissingID)
	}

	if err := validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "storagekey" {
			return nil, ErrInvalidKey
		}
		return nil, ErrMissingID
	}

	return doc, nil
}

// ValidKey reports whether id can be used as a storage key: non-empty, at
// most MaxKeyLength bytes, free of path separators and control characters,
// and not a relative path element.
func ValidKey(id string) bool {
	if id == "" || len(id) > MaxKeyLength || id == "." || id == ".." {
		return false
	}
	for _, r := range id {
		if r == '/' || r == '\\' || r == 0 || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
