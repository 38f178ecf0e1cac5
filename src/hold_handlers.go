package main

import (
	"eventx/src/config"
	"eventx/src/inventory"
	"eventx/src/types"
	"eventx/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func holdHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/holds", func(ctx *gin.Context) {
			var body types.CreateHoldRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			requestId := body.RequestID
			if header := ctx.GetHeader("X-Request-ID"); header != "" {
				requestId = header
			}
			userId := ctx.GetUint("id")
			params := inventory.CreateHoldParams{
				EventID:   body.EventID,
				UserID:    userId,
				Quantity:  body.Quantity,
				SeatIDs:   body.SeatIDs,
				TTL:       config.DirectHoldTTL(),
				RequestID: requestId,
			}
			if body.TicketTypeID != 0 {
				ttID := body.TicketTypeID
				params.TicketTypeID = &ttID
			}
			hold, err := getEngine().holds.CreateHold(ctx.Request.Context(), params)
			if err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": utils.HoldResponse(hold)})
		}).
		GET("/holds", func(ctx *gin.Context) {
			var filters types.HoldsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			holds, err := utils.GetOwnHolds(userId, filters.Status)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			data := make([]types.APIResponseHold, 0, len(holds))
			for i := range holds {
				data = append(data, utils.HoldResponse(&holds[i]))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		PUT("/holds/:id/extend", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			hold, err := getEngine().holds.ExtendHold(ctx.Request.Context(), params.ID, userId, config.DirectHoldTTL())
			if err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": utils.HoldResponse(hold)})
		}).
		DELETE("/holds/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			if err := getEngine().holds.ReleaseHold(ctx.Request.Context(), params.ID, userId); err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
