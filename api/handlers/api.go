package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kestrelapps/taskdeck-api/api"
	"github.com/kestrelapps/taskdeck-api/api/dispatch"
	"github.com/kestrelapps/taskdeck-api/api/scheduler"
	"github.com/kestrelapps/taskdeck-api/config"
	"github.com/kestrelapps/taskdeck-api/databases"
	"github.com/kestrelapps/taskdeck-api/models"
	"github.com/kestrelapps/taskdeck-api/pushgateway"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Gateway   pushgateway.Gateway
	Hub       *NotificationHub
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	if a.Hub == nil {
		a.Hub = NewNotificationHub()
	}

	tokenDB := databases.NewDeviceTokenDatabase(a.dbHelper)
	lifecycle := dispatch.NewLifecycle(tokenDB, a.Gateway)
	dispatcher := dispatch.NewDispatcher(a.Gateway, a.Config.PushChunkSize, a.Config.PushConcurrency, a.Config.PushTimeout)
	orchestrator := dispatch.NewOrchestrator(lifecycle, dispatcher, databases.NewGroupDatabase(a.dbHelper), a.Hub)

	pt := PushToken{Lifecycle: lifecycle}
	send := Send{Orchestrator: orchestrator}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.HandleFunc("/ws/notifications", a.Hub.HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/push/register", api.Middleware(http.HandlerFunc(pt.RegisterTokenHandler))).Methods("POST")
	apiCreate.Handle("/push/register", api.Middleware(http.HandlerFunc(pt.UnregisterTokenHandler))).Methods("DELETE")
	apiCreate.Handle("/push/tokens/{owner_id}", api.Middleware(http.HandlerFunc(pt.ListTokensHandler))).Methods("GET")

	apiCreate.Handle("/push/send/user/{owner_id}", api.Middleware(http.HandlerFunc(send.SendToUserHandler))).Methods("POST")
	apiCreate.Handle("/push/send/users", api.Middleware(http.HandlerFunc(send.SendToUsersHandler))).Methods("POST")
	apiCreate.Handle("/push/send/group/{group_id}", api.Middleware(http.HandlerFunc(send.SendToGroupHandler))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("taskdeck-api has connected to the database")

	tokenDB := databases.NewDeviceTokenDatabase(a.dbHelper)
	if err := tokenDB.EnsureIndexes(context.Background()); err != nil {
		// last-write-wins on registrations depends on the unique token index
		zap.S().With(err).Error("failed to ensure device token indexes")
		return err
	}

	// start the nightly stale-token sweep
	a.Scheduler = scheduler.NewScheduler(
		dispatch.NewLifecycle(tokenDB, a.Gateway),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		&a.Config,
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
