package model

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const (
	// JobTypeEbookIngest moves an uploaded ebook into the data directory,
	// sniffs its format and creates the ebook copy.
	JobTypeEbookIngest = "EBOOK_INGEST"
	// JobTypeCoverConvert converts an uploaded cover image to webp.
	JobTypeCoverConvert = "COVER_CONVERT"
)

// Job is one unit of background work queued to a worker pool.
type Job struct {
	ID     int32
	BookID int32
	Path   string
	Type   string
	Status string
	Item   interface{}
}

type JobList []Job

func (j JobList) Len() int {
	return len(j)
}
