package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rawthoughts/modfeed/src/status"
	"github.com/rawthoughts/modfeed/src/types"
	"github.com/rawthoughts/modfeed/src/workflow"
)

type Submissions struct {
	wf *workflow.Workflow
}

func NewSubmissions(wf *workflow.Workflow) Submissions {
	return Submissions{wf: wf}
}

// Create is the HTTP intake channel. The ack carries the assigned id and
// current status; reviewer fan-out happens behind the workflow.
func (h Submissions) Create(c *gin.Context) {
	var req struct {
		SubmitterID int64  `json:"submitterId" binding:"required"`
		Text        string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	sub, err := h.wf.Submit(c, req.SubmitterID, req.Text)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID, "status": sub.Status})
}

func (h Submissions) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad submission id"})
		return
	}

	sub, err := h.wf.Get(c, id)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}
	c.JSON(http.StatusOK, submissionJSON(sub))
}

// List filters by status; defaults to the pending moderation queue.
func (h Submissions) List(c *gin.Context) {
	st := c.DefaultQuery("status", types.StatusPending)
	if !status.Valid(st) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown status"})
		return
	}

	subs, err := h.wf.ListByStatus(c, st)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}

	out := make([]gin.H, 0, len(subs))
	for _, sub := range subs {
		out = append(out, submissionJSON(sub))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h Submissions) Stats(c *gin.Context) {
	st, err := h.wf.Stats(c)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}

	out := gin.H{
		"total":      st.Total,
		"pending":    st.Pending,
		"approved":   st.Approved,
		"rejected":   st.Rejected,
		"totalLikes": st.TotalLikes,
	}
	if st.MostLiked != nil {
		out["mostLiked"] = submissionJSON(*st.MostLiked)
	}
	c.JSON(http.StatusOK, out)
}

func submissionJSON(sub types.Submission) gin.H {
	return gin.H{
		"id":        sub.ID,
		"text":      sub.Text,
		"likes":     sub.Likes,
		"status":    sub.Status,
		"createdAt": sub.CreatedAt,
	}
}
