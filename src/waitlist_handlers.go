package main

import (
	"eventx/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func waitlistHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/events/:id/waitlist", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.JoinWaitlistRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var ttID *uint
			if body.TicketTypeID != 0 {
				id := body.TicketTypeID
				ttID = &id
			}
			entry, err := getEngine().waitlist.Join(ctx.Request.Context(), params.ID, ttID, userId)
			if err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": entry})
		}).
		GET("/waitlist", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			entries, err := getEngine().waitlist.ListOwn(ctx.Request.Context(), userId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
		})
	return g
}
