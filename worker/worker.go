package worker

import (
	"github.com/liber-hq/liber/model"
)

type Worker interface {
	Run(c <-chan model.Job)
}
