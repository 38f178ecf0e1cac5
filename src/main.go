package main

import (
	"errors"
	"eventx/src/boot"
	"eventx/src/db"
	"eventx/src/inventory"
	"eventx/src/lib"
	"eventx/src/middlewares"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"sync"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

type engine struct {
	holds    *inventory.HoldManager
	bookings *inventory.Coordinator
	waitlist *inventory.Waitlist
	reclaim  *inventory.Reclaimer
}

var (
	engineOnce sync.Once
	engineInst *engine
)

func getEngine() *engine {
	engineOnce.Do(func() {
		conn := db.GetDb()
		holds := inventory.NewHoldManager(conn, lib.NewKeyLock())
		engineInst = &engine{
			holds:    holds,
			bookings: inventory.NewCoordinator(conn, holds),
			waitlist: inventory.NewWaitlist(conn),
			reclaim:  inventory.NewReclaimer(conn, holds),
		}
	})
	return engineInst
}

// respondEngineError translates engine errors into HTTP responses. Typed
// errors carry extra detail (remaining stock, missing seats) into the body.
func respondEngineError(ctx *gin.Context, err error) {
	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		ctx.JSON(http.StatusConflict, gin.H{"error": stockErr.Error(), "available": stockErr.Available})
		return
	}
	var seatsErr *inventory.SeatsUnavailableError
	if errors.As(err, &seatsErr) {
		ctx.JSON(http.StatusConflict, gin.H{"error": seatsErr.Error(), "seats": seatsErr.Missing})
		return
	}
	switch {
	case errors.Is(err, inventory.ErrNotBookable):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrBusy):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrAlreadyTerminal),
		errors.Is(err, inventory.ErrAlreadyCanceled),
		errors.Is(err, inventory.ErrSeatInUse):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrHoldExpired),
		errors.Is(err, inventory.ErrAlreadyExpired):
		ctx.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("engine error: %s\n", err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.GET("/events/:id/availability", getEventAvailability)
	return apiv1
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()
	go boot.InitBroker()

	if err := getEngine().reclaim.Start(); err != nil {
		log.Printf("Error starting reclaimer job: %s\n", err.Error())
	}

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "X-Request-ID")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = holdHandlers(authorized)
		authorized = bookingHandlers(authorized)
		authorized = waitlistHandlers(authorized)
	}

	admin := router.Group(path.Join(apiPrefix, "/admin"))
	admin.Use(middlewares.AuthMiddleware, middlewares.AdminMiddleware)
	{
		admin = adminHandlers(admin)
	}

	router.Run(":9000")
}
