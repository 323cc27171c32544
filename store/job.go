package store

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
)

// AddJob records a queued unit of background work so it survives a restart.
func (s *Store) AddJob(job *model.Job) (*model.Job, error) {
	stmt := `
		INSERT INTO job (book_id, path, type, status)
		VALUES (?, ?, ?, ?)
		RETURNING id, book_id, path, type, status
	`
	args := []any{job.BookID, job.Path, job.Type, job.Status}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var newJob model.Job
	if err := tx.QueryRow(stmt, args...).Scan(
		&newJob.ID,
		&newJob.BookID,
		&newJob.Path,
		&newJob.Type,
		&newJob.Status,
	); err != nil {
		return nil, errors.Wrap(err, "failed to add job")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &newJob, nil
}

func (s *Store) UpdateJobStatus(id int32, status string) error {
	if _, err := s.db.Exec(`UPDATE job SET status = ? WHERE id = ?`, status, id); err != nil {
		return errors.Wrap(err, "failed to update job status")
	}
	return nil
}

// ListPendingJobs returns queued work in submission order, used to resume
// ingestion after a restart.
func (s *Store) ListPendingJobs() (model.JobList, error) {
	rows, err := s.db.Query(`SELECT id, book_id, path, type, status FROM job WHERE status = ? ORDER BY id`, model.JobStatusPending)
	if err != nil {
		log.Error("Failed to query jobs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make(model.JobList, 0)
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(&job.ID, &job.BookID, &job.Path, &job.Type, &job.Status); err != nil {
			return nil, err
		}
		list = append(list, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
