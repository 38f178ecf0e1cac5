package main

import (
	"eventx/src/inventory"
	"eventx/src/types"
	"eventx/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			requestId := body.RequestID
			if header := ctx.GetHeader("X-Request-ID"); header != "" {
				requestId = header
			}
			userId := ctx.GetUint("id")
			booking, err := getEngine().bookings.CreateBooking(ctx.Request.Context(), inventory.CreateBookingParams{
				EventID:      body.EventID,
				TicketTypeID: body.TicketTypeID,
				Quantity:     body.Quantity,
				UserID:       userId,
				SeatIDs:      body.SeatIDs,
				RequestID:    requestId,
			})
			if err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": utils.BookingResponse(booking)})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			var filters types.BookingsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			bookings, pagination, err := utils.GetOwnBookings(userId, filters.Status, filters.Page, filters.RowsPerPage)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			data := make([]types.APIResponseBooking, 0, len(bookings))
			for i := range bookings {
				data = append(data, utils.BookingResponse(&bookings[i]))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "pagination": pagination})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			booking, err := utils.GetOwnBooking(params.ID, userId)
			if err != nil {
				if utils.IsRecordNotFound(err) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": utils.BookingResponse(booking)})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := getEngine().bookings.CancelBooking(ctx.Request.Context(), params.ID, userId, body.Reason); err != nil {
				respondEngineError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
