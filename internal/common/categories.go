package common

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// EntityType is the domain object a file is attached to.
type EntityType string

const (
	EntityOwner    EntityType = "Owner"
	EntityProperty EntityType = "Property"
	EntityRoom     EntityType = "Room"
	EntityTenant   EntityType = "Tenant"
)

var entityTypes = []EntityType{EntityOwner, EntityProperty, EntityRoom, EntityTenant}

// FileCategory is the slot a file occupies for an entity.
type FileCategory string

const (
	CategoryOwnerImage       FileCategory = "OwnerImage"
	CategoryOwnerDocument    FileCategory = "OwnerDocument"
	CategoryPropertyImage    FileCategory = "PropertyImage"
	CategoryPropertyDocument FileCategory = "PropertyDocument"
	CategoryRoomImage        FileCategory = "RoomImage"
	CategoryTenantImage      FileCategory = "TenantImage"
	CategoryTenantDocument   FileCategory = "TenantDocument"
)

// DocumentType sub-classifies document uploads so several can coexist.
type DocumentType string

const (
	DocumentAgreement     DocumentType = "Agreement"
	DocumentAddressProof  DocumentType = "AddressProof"
	DocumentIdentityProof DocumentType = "IdentityProof"
)

var documentTypes = []DocumentType{DocumentAgreement, DocumentAddressProof, DocumentIdentityProof}

// FileKind groups categories that share validation limits.
type FileKind int

const (
	KindImage FileKind = iota + 1
	KindDocument
)

func (k FileKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// CategoryPolicy holds the limits that apply to one file category.
type CategoryPolicy struct {
	Category            FileCategory
	Entity              EntityType
	Kind                FileKind
	MaxSizeBytes        int64
	AllowedContentTypes []string
	AllowedExtensions   []string
}

var (
	imageContentTypes    = []string{"image/jpeg", "image/png", "image/gif"}
	imageExtensions      = []string{".jpg", ".jpeg", ".png", ".gif"}
	documentContentTypes = []string{"application/pdf"}
	documentExtensions   = []string{".pdf"}
)

func imagePolicy(c FileCategory, e EntityType) CategoryPolicy {
	return CategoryPolicy{
		Category:            c,
		Entity:              e,
		Kind:                KindImage,
		MaxSizeBytes:        MaxImageSizeBytes,
		AllowedContentTypes: imageContentTypes,
		AllowedExtensions:   imageExtensions,
	}
}

func documentPolicy(c FileCategory, e EntityType) CategoryPolicy {
	return CategoryPolicy{
		Category:            c,
		Entity:              e,
		Kind:                KindDocument,
		MaxSizeBytes:        MaxDocumentSizeBytes,
		AllowedContentTypes: documentContentTypes,
		AllowedExtensions:   documentExtensions,
	}
}

var policies = map[FileCategory]CategoryPolicy{
	CategoryOwnerImage:       imagePolicy(CategoryOwnerImage, EntityOwner),
	CategoryOwnerDocument:    documentPolicy(CategoryOwnerDocument, EntityOwner),
	CategoryPropertyImage:    imagePolicy(CategoryPropertyImage, EntityProperty),
	CategoryPropertyDocument: documentPolicy(CategoryPropertyDocument, EntityProperty),
	CategoryRoomImage:        imagePolicy(CategoryRoomImage, EntityRoom),
	CategoryTenantImage:      imagePolicy(CategoryTenantImage, EntityTenant),
	CategoryTenantDocument:   documentPolicy(CategoryTenantDocument, EntityTenant),
}

// PolicyFor returns the policy of c and whether c is known.
func PolicyFor(c FileCategory) (CategoryPolicy, bool) {
	p, ok := policies[c]
	return p, ok
}

// IsImage reports whether c is an image category.
func (c FileCategory) IsImage() bool {
	p, ok := policies[c]
	return ok && p.Kind == KindImage
}

// AllowsContentType matches ct against the policy after normalization.
func (p CategoryPolicy) AllowsContentType(ct string) bool {
	return slices.Contains(p.AllowedContentTypes, NormalizeContentType(ct))
}

// AllowsExtension matches the extension of fileName, case-insensitively.
func (p CategoryPolicy) AllowsExtension(fileName string) bool {
	return slices.Contains(p.AllowedExtensions, strings.ToLower(filepath.Ext(fileName)))
}

// NormalizeContentType lower-cases a MIME type and drops its parameters.
func NormalizeContentType(ct string) string {
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// IsImageContentType reports whether ct is one of the supported image types.
func IsImageContentType(ct string) bool {
	return slices.Contains(imageContentTypes, NormalizeContentType(ct))
}

// ParseEntityType resolves s case-insensitively.
func ParseEntityType(s string) (EntityType, error) {
	for _, e := range entityTypes {
		if strings.EqualFold(string(e), s) {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: entity type %q", ErrorIncorrectMetadata, s)
}

// ParseCategory resolves s case-insensitively.
func ParseCategory(s string) (FileCategory, error) {
	for c := range policies {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrorUnknownCategory, s)
}

// ParseDocumentType resolves s case-insensitively; "" stays empty.
func ParseDocumentType(s string) (DocumentType, error) {
	if s == "" {
		return "", nil
	}
	for _, d := range documentTypes {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: document type %q", ErrorIncorrectMetadata, s)
}

// CheckSlot verifies that category belongs to entity and that documentType
// is present exactly when the category holds documents.
func CheckSlot(entity EntityType, category FileCategory, documentType DocumentType) error {
	p, ok := PolicyFor(category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrorUnknownCategory, category)
	}
	if p.Entity != entity {
		return fmt.Errorf("%w: category %s does not belong to %s", ErrorIncorrectMetadata, category, entity)
	}
	if p.Kind == KindDocument && documentType == "" {
		return fmt.Errorf("%w: document type is required for %s", ErrorIncorrectMetadata, category)
	}
	if p.Kind == KindImage && documentType != "" {
		return fmt.Errorf("%w: document type is not allowed for %s", ErrorIncorrectMetadata, category)
	}
	return nil
}
