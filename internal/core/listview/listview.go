// Package listview contains the pure state transitions for the
// list/filter/paginate view and derives the cache key for each state.
package listview

import (
	"strconv"
	"strings"

	"github.com/example/notehub/internal/core/note"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 9

// KeyRoot is the first part of every list query key.
const KeyRoot = "notes"

// State is one configuration of the list view.
type State struct {
	Search  string
	Page    int
	PerPage int
	Tag     note.Tag
}

// New returns the initial state for a tag route.
func New(tag note.Tag, perPage int) State {
	if tag == "" {
		tag = note.TagAll
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return State{Page: 1, PerPage: perPage, Tag: tag}
}

// ApplySearch sets the (already debounced) search text and resets to page 1.
func ApplySearch(s State, search string) State {
	s.Search = search
	s.Page = 1
	return s
}

// SetPage changes the page only. Pages below 1 clamp to 1.
func SetPage(s State, page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// Navigate resets the whole view for a different tag route.
func Navigate(s State, tag note.Tag) State {
	return New(tag, s.PerPage)
}

// ClampPage pulls the page back inside [1, totalPages] once the total is known.
func ClampPage(s State, totalPages int) State {
	if totalPages >= 1 && s.Page > totalPages {
		s.Page = totalPages
	}
	return SetPage(s, s.Page)
}

// ShowPagination reports whether the pager should be rendered.
func ShowPagination(totalPages int) bool {
	return totalPages > 1
}

// Key derives the list query key. Equal states always produce equal keys.
func (s State) Key() []string {
	tag := s.Tag
	if tag == "" {
		tag = note.TagAll
	}
	return []string{KeyRoot, s.Search, strconv.Itoa(s.Page), strconv.Itoa(s.PerPage), string(tag)}
}

// TagParam returns the tag to send to the service, or "" for no filter.
func (s State) TagParam() string {
	if s.Tag == "" || s.Tag == note.TagAll {
		return ""
	}
	return string(s.Tag)
}

// ParseTagSlug maps a route such as "notes/filter/Work" to a tag.
// Unknown or missing slugs fall back to all.
func ParseTagSlug(route string) note.Tag {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	slug := parts[len(parts)-1]
	if len(parts) > 1 && parts[len(parts)-2] != "filter" {
		return note.TagAll
	}
	tag, err := note.ParseFilter(slug)
	if err != nil {
		return note.TagAll
	}
	return tag
}
