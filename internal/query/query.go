// Package query is the filter compiler for snippet listings. It turns the
// loosely-typed request parameters (everything arrives as a string) into a
// typed, closed query plan: a Filter, a Sort, and a Page plan.
//
// Compilation is a pure function of its inputs and never fails — malformed
// numeric input falls back to its default and out-of-range values are
// clamped. Raw request strings never reach the store layer: the repository
// builds SQL from the typed plan, not from user input.
package query

import (
	"math"
	"strconv"
	"strings"
)

// Pagination bounds. The limit is clamped into [1, MaxLimit] no matter what
// the caller asks for.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Reserved collection parameter values.
const (
	// CollectionAll disables the collection filter entirely.
	CollectionAll = "all"
	// CollectionUncategorized matches snippets with no collection reference.
	CollectionUncategorized = "uncategorized"
)

// Params are the raw, optional request parameters as received on the wire.
type Params struct {
	Page       string
	Limit      string
	Search     string
	Language   string
	IsPublic   string
	Collection string
	SortBy     string
	SortOrder  string
}

// Visibility is the tri-state compiled from the isPublic parameter.
type Visibility int

const (
	VisibilityAny     Visibility = iota // parameter absent or malformed
	VisibilityPublic                    // exactly "true"
	VisibilityPrivate                   // exactly "false"
)

// CollectionMode says how the collection clause applies.
type CollectionMode int

const (
	CollectionAny  CollectionMode = iota // no collection clause
	CollectionNone                       // snippets with no collection
	CollectionID                         // exact collection id match
)

// CollectionFilter is the compiled collection dimension.
type CollectionFilter struct {
	Mode CollectionMode
	ID   string // set only when Mode == CollectionID
}

// SortField is the closed set of sortable fields. Unknown sortBy values
// compile to SortCreatedAt.
type SortField int

const (
	SortCreatedAt SortField = iota
	SortUpdatedAt
	SortTitle
	SortViews
	SortLanguage
)

// SortDirection is ascending or descending; anything other than "asc"
// compiles to descending.
type SortDirection int

const (
	Desc SortDirection = iota
	Asc
)

// Sort is the compiled single-field sort plan. The repository appends the
// snippet id as a secondary key in the same direction so that ordering among
// equal sort values is deterministic and pagination is stable.
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// Page is the compiled pagination plan.
type Page struct {
	Num   int // 1-based page number, always >= 1
	Limit int // effective page size, in [1, MaxLimit]
	Skip  int // rows to skip: (Num-1) * Limit
}

// Filter is the compiled predicate. A zero Filter matches everything; each
// dimension is applied only when set. AuthorID is not a request parameter —
// the service scopes the predicate to the caller via WithAuthor.
type Filter struct {
	AuthorID   string
	Search     string // case-insensitive substring over title/description/tags
	Language   string // exact match, already lowercase by write-time rules
	Visibility Visibility
	Collection CollectionFilter
}

// WithAuthor returns a copy of the filter scoped to the given author.
// The receiver is unchanged.
func (f Filter) WithAuthor(authorID string) Filter {
	f.AuthorID = authorID
	return f
}

// Plan is the complete compiled output: predicate, ordering, pagination.
type Plan struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// Compile builds a Plan from raw parameters. It always succeeds.
func Compile(p Params) Plan {
	return Plan{
		Filter: compileFilter(p),
		Sort:   compileSort(p.SortBy, p.SortOrder),
		Page:   compilePage(p.Page, p.Limit),
	}
}

func compileFilter(p Params) Filter {
	f := Filter{Visibility: VisibilityAny, Collection: CollectionFilter{Mode: CollectionAny}}

	if s := strings.TrimSpace(p.Search); s != "" {
		f.Search = s
	}
	if lang := strings.TrimSpace(p.Language); lang != "" {
		f.Language = lang
	}

	// Strictly the strings "true"/"false" — anything else means no clause.
	switch p.IsPublic {
	case "true":
		f.Visibility = VisibilityPublic
	case "false":
		f.Visibility = VisibilityPrivate
	}

	switch c := strings.TrimSpace(p.Collection); c {
	case "", CollectionAll:
		// no collection clause
	case CollectionUncategorized:
		f.Collection = CollectionFilter{Mode: CollectionNone}
	default:
		f.Collection = CollectionFilter{Mode: CollectionID, ID: c}
	}

	return f
}

func compileSort(sortBy, sortOrder string) Sort {
	s := Sort{Field: SortCreatedAt, Direction: Desc}

	switch strings.TrimSpace(sortBy) {
	case "createdAt":
		s.Field = SortCreatedAt
	case "updatedAt", "lastModified":
		s.Field = SortUpdatedAt
	case "title":
		s.Field = SortTitle
	case "views":
		s.Field = SortViews
	case "language":
		s.Field = SortLanguage
	}

	if strings.TrimSpace(sortOrder) == "asc" {
		s.Direction = Asc
	}
	return s
}

func compilePage(page, limit string) Page {
	num := parseIntFloor(page, 1)
	if num < 1 {
		num = 1
	}

	lim := parseIntFloor(limit, DefaultLimit)
	if lim < 1 {
		lim = 1
	}
	if lim > MaxLimit {
		lim = MaxLimit
	}

	return Page{Num: num, Limit: lim, Skip: (num - 1) * lim}
}

// parseIntFloor parses a numeric string, flooring fractional values the way
// the wire format allows them ("2.7" means page 2). Non-numeric input yields
// the default.
func parseIntFloor(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
		return int(math.Floor(fl))
	}
	return def
}
