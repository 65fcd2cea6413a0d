package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rawthoughts/modfeed/src/ledger"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/workflow"
)

type Moderation struct {
	wf    *workflow.Workflow
	store *store.Store
}

func NewModeration(wf *workflow.Workflow, st *store.Store) Moderation {
	return Moderation{wf: wf, store: st}
}

func (h Moderation) Approve(c *gin.Context) {
	id, reviewer, ok := h.decisionParams(c)
	if !ok {
		return
	}
	if err := h.wf.Approve(c, reviewer, id); err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "approved"})
}

func (h Moderation) Reject(c *gin.Context) {
	id, reviewer, ok := h.decisionParams(c)
	if !ok {
		return
	}
	if err := h.wf.Reject(c, reviewer, id); err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "rejected"})
}

// Recount recomputes the Likes column from the stored voter set. It exists
// to repair drift left behind by interrupted writes.
func (h Moderation) Recount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad submission id"})
		return
	}

	sub, err := h.store.Get(c, id)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}

	count := len(ledger.ParseVoters(sub.Voters))
	if err := h.store.SetVoteCount(c, id, count); err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "likes": count})
}

func (h Moderation) decisionParams(c *gin.Context) (uint64, int64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad submission id"})
		return 0, 0, false
	}
	reviewer, _ := strconv.ParseInt(c.GetString("mod"), 10, 64)
	return id, reviewer, true
}
