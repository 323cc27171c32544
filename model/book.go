package model //import "github.com/liber-hq/liber/model"

import "strings"

// Book carries bibliographic metadata only. Stock and availability live on
// BookCopy.
type Book struct {
	ID int32 `json:"id"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"isbn"`
	CategoryID  int32  `json:"category_id"`
	CoverPath   string `json:"cover_path"`
	Description string `json:"description"`
	PublishDate string `json:"publish_date"`
}

type FindBook struct {
	ID         *int32  `json:"id"`
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	ISBN       *string `json:"isbn"`
	CategoryID *int32  `json:"category_id"`
	OrderBy    *string `json:"order_by"`

	// The maximum number of books to return.
	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

type BookCreateRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"isbn"`
	CategoryID  int32  `json:"category_id"`
	Description string `json:"description"`
	PublishDate string `json:"publish_date"`
}

// NewBook validates the request and builds a Book. The ISBN is normalized
// before validation; an empty ISBN is allowed.
func NewBook(req *BookCreateRequest) (*Book, error) {
	book := &Book{
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Publisher:   strings.TrimSpace(req.Publisher),
		CategoryID:  req.CategoryID,
		Description: req.Description,
		PublishDate: req.PublishDate,
	}

	isbn, err := NormalizeISBN(req.ISBN)
	if err != nil {
		return nil, err
	}
	book.ISBN = isbn

	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

func (b *Book) Validate() error {
	if b.Title == "" {
		return NewValidationError("book title is required")
	}
	if b.Author == "" {
		return NewValidationError("book author is required")
	}
	if b.Publisher == "" {
		return NewValidationError("book publisher is required")
	}
	if b.CategoryID <= 0 {
		return NewValidationError("book category is required")
	}
	return nil
}

// UpdateInfo replaces the book metadata. Blank title/author/publisher and
// malformed ISBNs are rejected; nothing is mutated on failure.
func (b *Book) UpdateInfo(req *BookCreateRequest) error {
	isbn, err := NormalizeISBN(req.ISBN)
	if err != nil {
		return err
	}

	updated := *b
	updated.Title = strings.TrimSpace(req.Title)
	updated.Author = strings.TrimSpace(req.Author)
	updated.Publisher = strings.TrimSpace(req.Publisher)
	updated.ISBN = isbn
	updated.CategoryID = req.CategoryID
	updated.Description = req.Description
	updated.PublishDate = req.PublishDate
	if err := updated.Validate(); err != nil {
		return err
	}

	*b = updated
	return nil
}

// NormalizeISBN strips hyphens and spaces and checks the result is all
// digits with length 10 or 13. An empty input normalizes to "".
func NormalizeISBN(isbn string) (string, error) {
	normalized := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if normalized == "" {
		return "", nil
	}
	if len(normalized) != 10 && len(normalized) != 13 {
		return "", NewValidationError("isbn must have 10 or 13 digits, got %d", len(normalized))
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return "", NewValidationError("isbn must contain digits only: %q", isbn)
		}
	}
	return normalized, nil
}
