package boot

import (
	"eventx/src/common"
	"eventx/src/db"
	"eventx/src/lib"
	"eventx/src/models"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.Event{},
		&models.TicketType{},
		&models.EventInventory{},
		&models.Seat{},
		&models.InventoryHold{},
		&models.InventoryHoldSeat{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Cancellation{},
		&models.EventWaitlist{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go common.AvailabilityChangedConsumer()
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
