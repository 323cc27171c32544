package worker

import (
	"github.com/liber-hq/liber/model"
)

type WorkPool interface {
	Push(job model.Job)
}
