package endpoint

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/pipeline"
)

// PipelineView is the read-only pipeline surface the status endpoints use.
type PipelineView interface {
	String() string
	Stages() []pipeline.StageInfo
	Running() bool
	Name() string
	ID() string
}

// Topology renders the topology line with live connector depths as plain
// text, e.g. "SUP -[2]-> MAP -[0]-> CON".
func Topology(p PipelineView) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, p.String()+"\n")
	}
}

// StagesReport is the /stages body.
type StagesReport struct {
	Pipeline string               `json:"pipeline"`
	ID       string               `json:"id"`
	Running  bool                 `json:"running"`
	Stages   []pipeline.StageInfo `json:"stages"`
}

func Stages(p PipelineView) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, StagesReport{
			Pipeline: p.Name(),
			ID:       p.ID(),
			Running:  p.Running(),
			Stages:   p.Stages(),
		})
	}
}

// Stage reports the stage at the :index path parameter wrapped as
// {"data": ...}. A malformed index is a 400, an absent one a 404.
func Stage(p PipelineView) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("index")
		idx, err := strconv.Atoi(raw)
		if err != nil {
			Fail(c, errors.InvalidInput("index", "must be an integer"))
			return
		}
		stages := p.Stages()
		if idx < 0 || idx >= len(stages) {
			Fail(c, errors.NotFound("stage", raw))
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stages[idx]})
	}
}

// Fail answers with the status and body of err's AppError, or a 500 for
// any other error.
func Fail(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Internal(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, appErr.ToResponse())
}
