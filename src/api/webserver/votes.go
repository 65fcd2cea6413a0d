package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rawthoughts/modfeed/src/workflow"
)

type Votes struct {
	wf *workflow.Workflow
}

func NewVotes(wf *workflow.Workflow) Votes {
	return Votes{wf: wf}
}

// Toggle flips the caller's vote on a submission and returns the new count.
func (h Votes) Toggle(c *gin.Context) {
	var req struct {
		SubmissionID uint64 `json:"submissionId" binding:"required"`
		VoterID      int64  `json:"voterId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	count, added, err := h.wf.Vote(c, req.VoterID, req.SubmissionID)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": count, "added": added})
}
