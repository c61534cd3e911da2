package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/deppfellow/anime-api/internal/validation"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// sortableAnimeFields whitelists columns accepted in ?sort=.
var sortableAnimeFields = map[string]bool{
	"id":   true,
	"name": true,
}

// ListAnimesRequest binds ?page=&size=&sort=. Page is zero-based and sort
// follows "field[,asc|desc]".
type ListAnimesRequest struct {
	Page int    `query:"page" validate:"min=0"`
	Size int    `query:"size" validate:"min=0"`
	Sort string `query:"sort"`
}

func (r *ListAnimesRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if _, err := ParseSort(r.Sort); err != nil {
		return validation.CustomValidationErrors{{Field: "sort", Message: err.Error()}}
	}
	// page*size is used as the SQL offset and must stay within int64.
	if size := NewPageRequest(0, r.Size, Sort{}).Size; r.Page >= math.MaxInt64/size {
		return validation.CustomValidationErrors{{Field: "page", Message: "is too large"}}
	}
	return nil
}

// PageRequest converts the query into a PageRequest, applying defaults.
func (r *ListAnimesRequest) PageRequest() PageRequest {
	sort, _ := ParseSort(r.Sort)
	return NewPageRequest(r.Page, r.Size, sort)
}

// Sort orders a page by a single column.
type Sort struct {
	Field     string
	Direction SortDirection
}

func (s Sort) String() string {
	return s.Field + " " + strings.ToUpper(string(s.Direction))
}

// ParseSort parses "name,desc". An empty string sorts by id ascending.
func ParseSort(raw string) (Sort, error) {
	sort := Sort{Field: "id", Direction: SortAsc}
	if raw == "" {
		return sort, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > 2 {
		return sort, fmt.Errorf("invalid sort %q", raw)
	}
	field := strings.ToLower(strings.TrimSpace(parts[0]))
	if !sortableAnimeFields[field] {
		return sort, fmt.Errorf("cannot sort by %q", parts[0])
	}
	sort.Field = field

	if len(parts) > 1 {
		switch dir := SortDirection(strings.ToLower(strings.TrimSpace(parts[1]))); dir {
		case SortAsc, SortDesc:
			sort.Direction = dir
		default:
			return sort, fmt.Errorf("invalid sort direction %q", parts[1])
		}
	}

	return sort, nil
}

// PageRequest addresses one page of a listing.
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// NewPageRequest clamps page and size into range.
func NewPageRequest(page, size int, sort Sort) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if sort.Field == "" {
		sort = Sort{Field: "id", Direction: SortAsc}
	}
	return PageRequest{Page: page, Size: size, Sort: sort}
}

func (p PageRequest) Offset() uint64 {
	return uint64(p.Page) * uint64(p.Size)
}

// Page is one slice of a listing together with totals.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage computes the page metadata for content fetched with req.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             req.Size,
		Number:           req.Page,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}
