package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/surveyforge/surveyforge-backend/pkg/apihelpers"
	mw "github.com/surveyforge/surveyforge-backend/pkg/apihelpers/middlewares"
	"github.com/surveyforge/surveyforge-backend/services/preview-api/apihandlers"
)

var conf PreviewApiConfig

func main() {
	if projectDBService == nil {
		slog.Error("Project DB service not initialized")
		return
	}

	sessionStore := apihandlers.NewSessionStore()
	go runSessionCleanup(sessionStore)

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "Api-Key"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")
	if len(conf.GinConfig.APIKeys) > 0 {
		v1Root.Use(mw.HasValidAPIKey(conf.GinConfig.APIKeys))
	}

	v1APIHandlers := apihandlers.NewHTTPHandler(
		projectDBService,
		sessionStore,
	)
	v1APIHandlers.AddPreviewSessionsAPI(v1Root)
	v1APIHandlers.AddProjectsAPI(v1Root)

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "preview-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Preview API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Preview API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Preview API", slog.String("error", err.Error()))
			return
		}
	}
}

func runSessionCleanup(sessionStore *apihandlers.SessionStore) {
	ticker := time.NewTicker(sessionCleanupTicker)
	defer ticker.Stop()

	for range ticker.C {
		removed := sessionStore.EvictInactive(sessionMaxInactivity)
		if removed > 0 {
			slog.Info("evicted inactive preview sessions", slog.Int("removed", removed), slog.Int("active", sessionStore.Count()))
		}
	}
}
