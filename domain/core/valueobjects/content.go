package valueobjects

import (
	"strings"
	"unicode/utf8"

	"github.com/hoangngo-sudo/the-morytale/domain/config"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// ContentKind distinguishes the two submission variants
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
)

// ParseContentKind validates a kind string from the outside world
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case KindText:
		return KindText, nil
	case KindImage:
		return KindImage, nil
	default:
		return "", pkgerrors.NewValidationError(`content kind must be "text" or "image"`)
	}
}

// ItemContent is the validated content of one submission. Exactly one of the
// kind-specific fields is populated: text for text items, contentURL for
// image items.
type ItemContent struct {
	kind       ContentKind
	text       string
	contentURL string
	caption    string
}

// NewTextContent creates content for a text submission
func NewTextContent(text, caption string) (ItemContent, error) {
	return newTextContentWithConfig(text, caption, config.DefaultDomainConfig())
}

func newTextContentWithConfig(text, caption string, cfg *config.DomainConfig) (ItemContent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ItemContent{}, pkgerrors.NewValidationError("text content is required for text items")
	}
	if utf8.RuneCountInString(text) > cfg.MaxTextLength {
		return ItemContent{}, pkgerrors.NewValidationError("text content is too long")
	}
	if err := validateCaption(caption, cfg); err != nil {
		return ItemContent{}, err
	}

	return ItemContent{
		kind:    KindText,
		text:    text,
		caption: strings.TrimSpace(caption),
	}, nil
}

// NewImageContent creates content for an image submission that has already
// been uploaded to durable storage
func NewImageContent(contentURL, caption string) (ItemContent, error) {
	contentURL = strings.TrimSpace(contentURL)
	if contentURL == "" {
		return ItemContent{}, pkgerrors.NewValidationError("image file or URL is required for image items")
	}
	if err := validateCaption(caption, config.DefaultDomainConfig()); err != nil {
		return ItemContent{}, err
	}

	return ItemContent{
		kind:       KindImage,
		contentURL: contentURL,
		caption:    strings.TrimSpace(caption),
	}, nil
}

func validateCaption(caption string, cfg *config.DomainConfig) error {
	if utf8.RuneCountInString(strings.TrimSpace(caption)) > cfg.MaxCaptionLength {
		return pkgerrors.NewValidationError("caption is too long")
	}
	return nil
}

// Kind returns the content kind
func (c ItemContent) Kind() ContentKind { return c.kind }

// Text returns the submitted text (empty for image items)
func (c ItemContent) Text() string { return c.text }

// ContentURL returns the durable image URL (empty for text items)
func (c ItemContent) ContentURL() string { return c.contentURL }

// Caption returns the optional caption
func (c ItemContent) Caption() string { return c.caption }

// IsEmpty checks if content is empty
func (c ItemContent) IsEmpty() bool {
	return c.text == "" && c.contentURL == ""
}
