package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// Validate checks file against the limits of category: size, then content
// type, then extension. It panics on a category it does not know.
func Validate(file models.File, category common.FileCategory) error {
	p, ok := common.PolicyFor(category)
	if !ok {
		panic(fmt.Sprintf("services.Validate: unknown file category %q", category))
	}

	if file.Size() > p.MaxSizeBytes {
		return &ValidationError{
			Reason:   ReasonTooLarge,
			Category: category,
			Message:  fmt.Sprintf("file size exceeds %dMB limit for %s", p.MaxSizeBytes>>20, p.Kind),
		}
	}

	if !p.AllowsContentType(file.ContentType) {
		return &ValidationError{
			Reason:   ReasonUnsupportedType,
			Category: category,
			Message:  fmt.Sprintf("content type %q is not allowed, use %s", file.ContentType, strings.Join(p.AllowedContentTypes, ", ")),
		}
	}

	if !p.AllowsExtension(file.Name) {
		return &ValidationError{
			Reason:   ReasonUnsupportedExtension,
			Category: category,
			Message:  fmt.Sprintf("file %q must have one of the extensions %s", file.Name, strings.Join(p.AllowedExtensions, ", ")),
		}
	}

	return nil
}
