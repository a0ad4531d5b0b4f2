package cli

import (
	availabilityCommands "github.com/felixgeelhaar/vaxsched/internal/availability/application/commands"
	availabilityQueries "github.com/felixgeelhaar/vaxsched/internal/availability/application/queries"
	bookingCommands "github.com/felixgeelhaar/vaxsched/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/vaxsched/internal/booking/application/queries"
	identityCommands "github.com/felixgeelhaar/vaxsched/internal/identity/application/commands"
	identityQueries "github.com/felixgeelhaar/vaxsched/internal/identity/application/queries"
	inventoryCommands "github.com/felixgeelhaar/vaxsched/internal/inventory/application/commands"
	"github.com/felixgeelhaar/vaxsched/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	// Identity handlers
	RegisterAccountHandler *identityCommands.RegisterAccountHandler
	LoginHandler           *identityCommands.LoginHandler
	LogoutHandler          *identityCommands.LogoutHandler
	CurrentSessionHandler  *identityQueries.CurrentSessionHandler

	// Inventory handlers
	AddDosesHandler *inventoryCommands.AddDosesHandler

	// Availability handlers
	PublishSlotHandler    *availabilityCommands.PublishSlotHandler
	SearchScheduleHandler *availabilityQueries.SearchScheduleHandler

	// Booking handlers
	ReserveHandler          *bookingCommands.ReserveHandler
	ListAppointmentsHandler *bookingQueries.ListAppointmentsHandler

	// SessionFilePath is where the active session token is persisted
	// between CLI invocations.
	SessionFilePath string
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	registerAccountHandler *identityCommands.RegisterAccountHandler,
	loginHandler *identityCommands.LoginHandler,
	logoutHandler *identityCommands.LogoutHandler,
	currentSessionHandler *identityQueries.CurrentSessionHandler,
	addDosesHandler *inventoryCommands.AddDosesHandler,
	publishSlotHandler *availabilityCommands.PublishSlotHandler,
	searchScheduleHandler *availabilityQueries.SearchScheduleHandler,
	reserveHandler *bookingCommands.ReserveHandler,
	listAppointmentsHandler *bookingQueries.ListAppointmentsHandler,
) *App {
	return &App{
		RegisterAccountHandler:  registerAccountHandler,
		LoginHandler:            loginHandler,
		LogoutHandler:           logoutHandler,
		CurrentSessionHandler:   currentSessionHandler,
		AddDosesHandler:         addDosesHandler,
		PublishSlotHandler:      publishSlotHandler,
		SearchScheduleHandler:   searchScheduleHandler,
		ReserveHandler:          reserveHandler,
		ListAppointmentsHandler: listAppointmentsHandler,
		SessionFilePath:         config.DefaultSessionFilePath(),
	}
}

// SetSessionFilePath overrides where the session token is stored.
func (a *App) SetSessionFilePath(path string) {
	a.SessionFilePath = path
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
