package webserver

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rawthoughts/modfeed/src/store"
)

// exportHeader preserves the legacy spreadsheet column set and order.
var exportHeader = []string{"ID", "Text", "Likes", "Status", "CreatedAt", "Voters"}

type Export struct {
	store *store.Store
}

func NewExport(st *store.Store) Export {
	return Export{store: st}
}

// CSV streams every submission in the spreadsheet-compatible layout.
func (h Export) CSV(c *gin.Context) {
	subs, err := h.store.All(c)
	if err != nil {
		code, msg := mapError(err)
		c.JSON(code, gin.H{"err": msg})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="submissions.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, sub := range subs {
		_ = w.Write([]string{
			strconv.FormatUint(sub.ID, 10),
			sub.Text,
			strconv.Itoa(sub.Likes),
			sub.Status,
			sub.CreatedAt.Format(time.DateTime),
			sub.Voters,
		})
	}
	w.Flush()
}
