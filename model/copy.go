package model

// CopyType is the kind of a lendable unit.
type CopyType string

const (
	// CopyTypePhysical is a block of physical stock on a shelf.
	CopyTypePhysical CopyType = "PHYSICAL"
	// CopyTypeEbook is a single ebook file reference.
	CopyTypeEbook CopyType = "EBOOK"
)

// CopyStatus is the administrative status of a copy.
type CopyStatus string

const (
	CopyStatusAvailable   CopyStatus = "AVAILABLE"
	CopyStatusUnavailable CopyStatus = "UNAVAILABLE"
	CopyStatusMaintenance CopyStatus = "MAINTENANCE"
)

// EbookFormat is the file format of an ebook copy.
type EbookFormat string

const (
	EbookFormatPDF  EbookFormat = "pdf"
	EbookFormatEpub EbookFormat = "epub"
	EbookFormatMobi EbookFormat = "mobi"
)

func supportedEbookFormat(f EbookFormat) bool {
	switch f {
	case EbookFormatPDF, EbookFormatEpub, EbookFormatMobi:
		return true
	}
	return false
}

// BookCopy is one lendable unit of a Book. A physical copy carries stock
// counters and a shelf location; an ebook copy carries a file reference.
// The two field sets are exclusive: NewPhysicalCopy and NewEbookCopy are
// the only constructors and Validate rejects any mixed state.
type BookCopy struct {
	ID     int32    `json:"id"`
	BookID int32    `json:"book_id"`
	Type   CopyType `json:"type"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	Status CopyStatus `json:"status"`

	// Physical fields.
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	Location        string `json:"location"`

	// Ebook fields.
	Format   EbookFormat `json:"format"`
	FilePath string      `json:"file_path"`
	FileSize int64       `json:"file_size"`
}

type FindCopy struct {
	ID     *int32      `json:"id"`
	BookID *int32      `json:"book_id"`
	Type   *CopyType   `json:"type"`
	Status *CopyStatus `json:"status"`

	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

func NewPhysicalCopy(bookID int32, totalCopies int, location string) (*BookCopy, error) {
	copy := &BookCopy{
		BookID:          bookID,
		Type:            CopyTypePhysical,
		Status:          CopyStatusAvailable,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		Location:        location,
	}
	if err := copy.Validate(); err != nil {
		return nil, err
	}
	return copy, nil
}

func NewEbookCopy(bookID int32, format EbookFormat, filePath string, fileSize int64) (*BookCopy, error) {
	copy := &BookCopy{
		BookID:   bookID,
		Type:     CopyTypeEbook,
		Status:   CopyStatusAvailable,
		Format:   format,
		FilePath: filePath,
		FileSize: fileSize,
	}
	if err := copy.Validate(); err != nil {
		return nil, err
	}
	return copy, nil
}

// Validate enforces the per-type field set and the stock bounds. It runs on
// construction and again before every persisted mutation.
func (c *BookCopy) Validate() error {
	switch c.Type {
	case CopyTypePhysical:
		if c.Format != "" || c.FilePath != "" || c.FileSize != 0 {
			return NewValidationError("physical copy must not carry ebook fields")
		}
		if c.TotalCopies < 1 {
			return NewValidationError("physical copy requires totalCopies >= 1, got %d", c.TotalCopies)
		}
		if c.AvailableCopies < 0 || c.AvailableCopies > c.TotalCopies {
			return NewValidationError("availableCopies %d out of range [0, %d]", c.AvailableCopies, c.TotalCopies)
		}
	case CopyTypeEbook:
		if c.TotalCopies != 0 || c.AvailableCopies != 0 || c.Location != "" {
			return NewValidationError("ebook copy must not carry physical stock fields")
		}
		if c.FilePath == "" {
			return NewValidationError("ebook copy requires a non-empty file path")
		}
		if !supportedEbookFormat(c.Format) {
			return NewValidationError("unsupported ebook format %q", c.Format)
		}
	default:
		return NewValidationError("unknown copy type %q", c.Type)
	}
	return nil
}

// Borrow takes one unit of stock. Ebook reads are unlimited, so borrowing
// an ebook copy mutates nothing.
func (c *BookCopy) Borrow() error {
	if c.Status != CopyStatusAvailable {
		return NewInvalidStateError("copy %d is %s and cannot be borrowed", c.ID, c.Status)
	}
	if c.Type == CopyTypeEbook {
		return nil
	}
	if c.AvailableCopies <= 0 {
		return NewOutOfStockError("no available copies of copy %d", c.ID)
	}
	c.AvailableCopies--
	return nil
}

// Return gives one unit of stock back. No-op for ebook copies.
func (c *BookCopy) Return() error {
	if c.Type == CopyTypeEbook {
		return nil
	}
	if c.AvailableCopies >= c.TotalCopies {
		return NewOverReturnError("all %d copies of copy %d are already in stock", c.TotalCopies, c.ID)
	}
	c.AvailableCopies++
	return nil
}

// UpdateTotalCopies resizes physical stock while preserving the number of
// units currently borrowed.
func (c *BookCopy) UpdateTotalCopies(newTotal int) error {
	if c.Type != CopyTypePhysical {
		return NewValidationError("stock can only be updated on a physical copy")
	}
	if newTotal < 1 {
		return NewValidationError("totalCopies must be >= 1, got %d", newTotal)
	}
	borrowed := c.BorrowedCount()
	if newTotal < borrowed {
		return NewValidationError("total stock cannot be less than the number currently borrowed (%d)", borrowed)
	}
	c.TotalCopies = newTotal
	c.AvailableCopies = newTotal - borrowed
	return nil
}

// BorrowedCount is the number of physical units currently checked out.
func (c *BookCopy) BorrowedCount() int {
	if c.Type != CopyTypePhysical {
		return 0
	}
	return c.TotalCopies - c.AvailableCopies
}

// IsAvailable reports whether a new borrow may start on this copy.
func (c *BookCopy) IsAvailable() bool {
	if c.Status != CopyStatusAvailable {
		return false
	}
	return c.Type == CopyTypeEbook || c.AvailableCopies > 0
}

// Status transitions are unconditional. A copy may be pulled for
// maintenance while borrows are outstanding; those complete normally and
// only new borrows are blocked.
func (c *BookCopy) MarkAvailable()   { c.Status = CopyStatusAvailable }
func (c *BookCopy) MarkUnavailable() { c.Status = CopyStatusUnavailable }
func (c *BookCopy) MarkMaintenance() { c.Status = CopyStatusMaintenance }
