// Package note contains the pure business logic for notes: the tag
// enumeration, form values, validation guards and partial-update diffs.
package note

import (
	"fmt"
	"strings"
	"time"
)

// Tag is a note category. TagAll is a filter value only and is never stored.
type Tag string

const (
	TagTodo     Tag = "Todo"
	TagWork     Tag = "Work"
	TagPersonal Tag = "Personal"
	TagMeeting  Tag = "Meeting"
	TagShopping Tag = "Shopping"

	TagAll Tag = "all"
)

// Tags lists the storable tags in display order.
var Tags = []Tag{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}

// Valid reports whether t may be stored on a note.
func (t Tag) Valid() bool {
	for _, candidate := range Tags {
		if t == candidate {
			return true
		}
	}
	return false
}

// ParseTag resolves a storable tag case-insensitively.
func ParseTag(s string) (Tag, error) {
	for _, candidate := range Tags {
		if strings.EqualFold(s, string(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tag %q (valid: %s)", s, joinTags(Tags))
}

// ParseFilter resolves a list filter. Empty input and "all" both mean no filter.
func ParseFilter(s string) (Tag, error) {
	if s == "" || strings.EqualFold(s, string(TagAll)) {
		return TagAll, nil
	}
	return ParseTag(s)
}

func joinTags(tags []Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// Note is a note as returned by the remote service.
type Note struct {
	ID        string
	Title     string
	Content   string
	Tag       Tag
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Values returns the editable fields of the note.
func (n Note) Values() Values {
	return Values{Title: n.Title, Content: n.Content, Tag: n.Tag}
}

// Values are the fields a user edits in the create or edit form.
type Values struct {
	Title   string `json:"title" validate:"required,min=3,max=50"`
	Content string `json:"content" validate:"max=500"`
	Tag     Tag    `json:"tag" validate:"required,oneof=Todo Work Personal Meeting Shopping"`
}

// EmptyValues is the initial state of a fresh create form.
func EmptyValues() Values {
	return Values{Tag: TagTodo}
}

// Patch carries only the fields that changed. Nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
	Tag     *Tag
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tag == nil
}

// Diff builds the partial update that turns from into to.
func Diff(from Note, to Values) Patch {
	var p Patch
	if from.Title != to.Title {
		title := to.Title
		p.Title = &title
	}
	if from.Content != to.Content {
		content := to.Content
		p.Content = &content
	}
	if from.Tag != to.Tag {
		tag := to.Tag
		p.Tag = &tag
	}
	return p
}

// FullPatch sets every field of v.
func FullPatch(v Values) Patch {
	title, content, tag := v.Title, v.Content, v.Tag
	return Patch{Title: &title, Content: &content, Tag: &tag}
}

// TimestampLayout renders as dd.MM.yyyy, HH:mm.
const TimestampLayout = "02.01.2006, 15:04"

// FormatTimestamp renders t in local time for the preview overlay.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimestampLayout)
}
