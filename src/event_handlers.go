package main

import (
	"eventx/src/config"
	"eventx/src/db"
	"eventx/src/inventory"
	"eventx/src/lib"
	"eventx/src/models"
	"eventx/src/types"
	"eventx/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getEventAvailability(ctx *gin.Context) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	cacheKey := lib.AvailabilityCacheKey(params.ID)
	var cached types.EventAvailability
	if lib.CacheGetJSON(ctx.Request.Context(), cacheKey, &cached) {
		ctx.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}
	availability, err := utils.BuildEventAvailability(params.ID, false)
	if err != nil {
		if utils.IsRecordNotFound(err) {
			ctx.Status(http.StatusNotFound)
			return
		}
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	lib.CacheSetJSON(ctx.Request.Context(), cacheKey, availability, config.AvailabilityCacheTTL())
	ctx.JSON(http.StatusOK, gin.H{"data": availability})
}

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events/:id/inventory", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			availability, err := utils.BuildEventAvailability(params.ID, true)
			if err != nil {
				if utils.IsRecordNotFound(err) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": availability})
		}).
		GET("/holds", func(ctx *gin.Context) {
			var filters types.AdminHoldsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			holds, err := utils.GetAdminHolds(&filters)
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
		DELETE("/holds/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			// actor 0 releases on behalf of the system, skipping the owner check
			if err := getEngine().holds.ReleaseHold(ctx.Request.Context(), params.ID, 0); err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/events/:id/seats/:seatId", func(ctx *gin.Context) {
			var params struct {
				ID     uint `uri:"id" binding:"required"`
				SeatID uint `uri:"seatId" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateSeatRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			var registry inventory.SeatRegistry
			err := conn.Transaction(func(tx *gorm.DB) error {
				return registry.AdminSetStatus(tx, params.ID, params.SeatID, body.Status, body.TicketTypeID)
			})
			if err != nil {
				respondEngineError(ctx, err)
				return
			}
			go lib.InvalidateAvailability(params.ID)
			var seat models.Seat
			if err := conn.Where(&models.Seat{ID: params.SeatID}).First(&seat).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seat})
		}).
		PUT("/bookings/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := getEngine().bookings.ConfirmBooking(ctx.Request.Context(), params.ID)
			if err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": utils.BookingResponse(booking)})
		}).
		POST("/reclaim", func(ctx *gin.Context) {
			count, err := getEngine().reclaim.Sweep(ctx.Request.Context())
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"reclaimed": count})
		})
	return g
}
