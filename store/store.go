package store //import "github.com/liber-hq/liber/store"

import (
	"database/sql"
	"sync"
	"time"
)

// Store is the persistence layer. All SQL lives here; domain rules live in
// model. dbLock serializes writers: sqlite allows a single writer and the
// borrow/return paths are read-modify-write sequences against shared stock
// counters.
type Store struct {
	db     *sql.DB
	dbLock sync.Mutex

	UserCache          sync.Map // map[int32]*model.User
	BookCache          sync.Map // map[int32]*model.Book
	SystemSettingCache sync.Map // map[string]*model.SystemSetting
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Times are persisted as RFC3339 UTC so that string comparison in SQL
// matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
