package worker // import "github.com/liber-hq/liber/worker"

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/model"
	"github.com/liber-hq/liber/store"
	"github.com/liber-hq/liber/util"
	"github.com/liber-hq/liber/util/parsers/epub"
)

// IngestPool runs ebook ingest and cover conversion jobs.
type IngestPool struct {
	queue chan model.Job
}

func NewIngestPool(store *store.Store, size int) *IngestPool {
	pool := &IngestPool{
		queue: make(chan model.Job),
	}

	for i := 0; i < size; i++ {
		worker := &IngestWorker{id: i, store: store}
		go worker.Run(pool.queue)
	}

	return pool
}

// Push implements the WorkPool interface.
func (p *IngestPool) Push(job model.Job) {
	p.queue <- job
}

type IngestWorker struct {
	id    int
	store *store.Store
}

func (w *IngestWorker) Run(c <-chan model.Job) {
	log.Debug("IngestWorker is running", zap.Int("worker_id", w.id))

	for {
		job := <-c

		log.Debug("Job received by worker",
			zap.Int("worker_id", w.id),
			zap.Int32("job_id", job.ID),
			zap.String("job_type", job.Type))

		var err error
		switch job.Type {
		case model.JobTypeEbookIngest:
			err = w.ingestEbook(&job)
		case model.JobTypeCoverConvert:
			err = w.convertCover(&job)
		default:
			log.Warn("Unknown job type", zap.String("job_type", job.Type))
			continue
		}

		status := model.JobStatusDone
		if err != nil {
			log.Error("Job failed", zap.Int32("job_id", job.ID), zap.Error(err))
			status = model.JobStatusFailed
		}
		if err := w.store.UpdateJobStatus(job.ID, status); err != nil {
			log.Error("Failed to update job status", zap.Int32("job_id", job.ID), zap.Error(err))
		}
	}
}

// ingestEbook moves the uploaded file into place, validates the format and
// creates the ebook copy.
func (w *IngestWorker) ingestEbook(job *model.Job) error {
	fileHeader := job.Item.(*multipart.FileHeader)
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	if err := os.MkdirAll(filepath.Dir(job.Path), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(job.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	size, err := io.Copy(f, file)
	if err != nil {
		os.Remove(job.Path)
		return err
	}

	format := model.EbookFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(job.Path)), "."))
	if format == model.EbookFormatEpub {
		// Reject files that only pretend to be epubs.
		book, err := epub.Open(job.Path)
		if err != nil {
			os.Remove(job.Path)
			return err
		}
		book.Close()
	}

	copy, err := model.NewEbookCopy(job.BookID, format, job.Path, size)
	if err != nil {
		os.Remove(job.Path)
		return err
	}
	newCopy, err := w.store.AddCopy(copy)
	if err != nil {
		os.Remove(job.Path)
		return err
	}

	log.Debug("Ebook ingested",
		zap.String("file_name", fileHeader.Filename),
		zap.Int32("book_id", job.BookID),
		zap.Int32("copy_id", newCopy.ID))
	return nil
}

// convertCover converts a stored cover image to webp and points the book at
// it. The original upload is removed on success.
func (w *IngestWorker) convertCover(job *model.Job) error {
	webpPath := util.ImageToWebp(job.Path, 80)
	coverPath := job.Path
	if webpPath != "" {
		os.Remove(job.Path)
		coverPath = webpPath
	}

	book, err := w.store.GetBook(&model.FindBook{ID: &job.BookID})
	if err != nil {
		return err
	}
	if book == nil {
		return model.NewNotFoundError("book", job.BookID)
	}

	book.CoverPath = coverPath
	if _, err := w.store.UpdateBook(book); err != nil {
		return err
	}

	log.Debug("Cover converted",
		zap.Int32("book_id", job.BookID),
		zap.String("cover_path", coverPath))
	return nil
}
