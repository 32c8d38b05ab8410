package domain

import (
	"fmt"
	"time"
)

// ItemKind represents how an item entered the inbox
type ItemKind string

const (
	ItemKindNote ItemKind = "note"
	ItemKindURL  ItemKind = "url"
)

const (
	// NoteTitle is the display title given to manually entered notes
	NoteTitle = "Text Note"
	// NoteSource is the source label given to manually entered notes
	NoteSource = "Manual Input"
	// PlaceholderSource is shown when an item has neither title nor source
	PlaceholderSource = "Note"
)

// Item represents a saved note or scraped web page
type Item struct {
	ID      string
	Kind    ItemKind
	Content string
	Title   string
	Source  string // original URL or NoteSource
	// SnapshotKey locates the archived raw page, empty when nothing was archived
	SnapshotKey string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExtractedPage is the readable text pulled from a fetched web page.
type ExtractedPage struct {
	Title   string
	Content string
	Source  string
	RawHTML []byte
}

// NewItem creates a new Item instance
func NewItem(id string, kind ItemKind, content, title, source string, createdAt time.Time) *Item {
	return &Item{
		ID:        id,
		Kind:      kind,
		Content:   content,
		Title:     title,
		Source:    source,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// DisplaySource resolves the label shown next to a citation.
func (i *Item) DisplaySource() string {
	if i == nil {
		return PlaceholderSource
	}
	if i.Title != "" {
		return i.Title
	}
	if i.Source != "" {
		return i.Source
	}
	return PlaceholderSource
}

// ParseItemKind validates a raw kind string
func ParseItemKind(raw string) (ItemKind, error) {
	kind := ItemKind(raw)
	if !IsValidItemKind(kind) {
		return "", ErrInvalidItemKind
	}
	return kind, nil
}

// IsValidItemKind checks if an ItemKind is valid
func IsValidItemKind(k ItemKind) bool {
	switch k {
	case ItemKindNote, ItemKindURL:
		return true
	}
	return false
}

// ValidateItem validates an Item instance
func ValidateItem(i *Item) error {
	if i == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if i.ID == "" {
		return fmt.Errorf("item ID is required")
	}

	if i.Content == "" {
		return fmt.Errorf("item Content is required")
	}

	if !IsValidItemKind(i.Kind) {
		return fmt.Errorf("item Kind is invalid: %s", i.Kind)
	}

	return nil
}
