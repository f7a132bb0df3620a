package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"thetalounge/internal/api"
	"thetalounge/internal/auth"
	"thetalounge/internal/repository"
	"thetalounge/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	appointmentRepo := repository.NewAppointmentRepository(database)
	calendarRepo := repository.NewCalendarRepository(database)
	activationRepo := repository.NewActivationRepository(database)
	jobRepo := repository.NewJobRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)

	sender := service.NewSenderService()
	bookingSvc := service.NewBookingService(appointmentRepo, sender)
	calendarSvc := service.NewCalendarService(calendarRepo)
	activationSvc := service.NewActivationService(activationRepo)
	jobSvc := service.NewJobService(jobRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)

	appointmentHandler := api.NewAppointmentHandler(bookingSvc)
	calendarHandler := api.NewCalendarHandler(calendarSvc)
	activationHandler := api.NewActivationHandler(activationSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	// Daily expiry sweep. SkipIfStillRunning keeps overlapping runs from
	// piling up if a sweep takes unusually long.
	sweepSpec := os.Getenv("EXPIRY_SWEEP_CRON")
	if sweepSpec == "" {
		sweepSpec = "0 0 * * *"
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(sweepSpec, func() {
		if err := jobSvc.ExpireConfirmedActivations(); err != nil {
			log.Printf("Expiry sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule expiry sweep: %v", err)
	}
	c.Start()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/appointments", appointmentHandler.CreateAppointment).Methods("POST")
	r.HandleFunc("/api/appointments/booked-times/{date}", appointmentHandler.GetBookedTimes).Methods("GET")
	r.HandleFunc("/api/appointments/counts", appointmentHandler.GetAppointmentCounts).Methods("GET")
	r.HandleFunc("/api/calendar", calendarHandler.GetCalendar).Methods("GET")
	r.HandleFunc("/api/packages", activationHandler.ListPackages).Methods("GET")
	r.HandleFunc("/api/package-activations", activationHandler.CreateActivation).Methods("POST")
	r.HandleFunc("/api/package-activations/active", activationHandler.GetActivePackages).Methods("GET")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/appointments", appointmentHandler.ListAppointments).Methods("GET")
	admin.HandleFunc("/appointments/{id}/status", appointmentHandler.UpdateAppointmentStatus).Methods("PATCH")
	admin.HandleFunc("/package-activations", activationHandler.ListActivations).Methods("GET")
	admin.HandleFunc("/package-activations/{id}/status", activationHandler.UpdateActivationStatus).Methods("PATCH")
	admin.HandleFunc("/calendar", calendarHandler.SaveCalendarDay).Methods("PUT")

	allowedOrigins := []string{"*"}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, corsHandler)))
}
