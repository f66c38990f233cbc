package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FranksOps/scout/internal/pipeline"
)

type handlers struct {
	answerer Answerer
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func internalMessage(msg string) string {
	return "Internal server error: " + msg
}

// query handles POST /query.
func (h *handlers) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(pipeline.MsgNoQuery))
		return
	}

	// A started query runs to completion even if the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	answer, err := h.answerer.Answer(ctx, req.Query)
	if err != nil {
		switch pipeline.KindOf(err) {
		case pipeline.KindBadRequest:
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		case pipeline.KindNotFound:
			c.JSON(http.StatusNotFound, errorBody(err.Error()))
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, errorBody(internalMessage(err.Error())))
		}
		return
	}

	c.JSON(http.StatusOK, answer)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
