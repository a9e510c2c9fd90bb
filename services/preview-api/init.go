package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/surveyforge/surveyforge-backend/pkg/apihelpers"
	"github.com/surveyforge/surveyforge-backend/pkg/db"
	"github.com/surveyforge/surveyforge-backend/pkg/utils"

	"log/slog"

	projectDB "github.com/surveyforge/surveyforge-backend/pkg/db/project"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_PROJECT_DB_USERNAME = "PROJECT_DB_USERNAME"
	ENV_PROJECT_DB_PASSWORD = "PROJECT_DB_PASSWORD"

	ENV_PREVIEW_API_KEYS = "PREVIEW_API_KEYS"
)

type PreviewApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`

		APIKeys []string `json:"api_keys" yaml:"api_keys"`
	} `json:"gin_config" yaml:"gin_config"`

	// DB configs
	DBConfigs struct {
		ProjectDB db.DBConfigYaml `json:"project_db" yaml:"project_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Preview session configs
	PreviewConfig struct {
		SessionMaxInactivity string `json:"session_max_inactivity" yaml:"session_max_inactivity"`
		CleanupInterval      string `json:"cleanup_interval" yaml:"cleanup_interval"`
	} `json:"preview_config" yaml:"preview_config"`
}

var (
	projectDBService *projectDB.ProjectDBService

	sessionMaxInactivity time.Duration
	sessionCleanupTicker time.Duration
)

const (
	defaultSessionMaxInactivity = 2 * time.Hour
	defaultCleanupInterval      = 15 * time.Minute
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
		conf.Logging.IncludeBuildInfo,
	)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	initSessionTimings()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_PROJECT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ProjectDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_PROJECT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ProjectDB.Password = dbPassword
	}

	if apiKeys := os.Getenv(ENV_PREVIEW_API_KEYS); apiKeys != "" {
		conf.GinConfig.APIKeys = strings.Split(apiKeys, ",")
	}
}

func initDBs() {
	var err error
	projectDBService, err = projectDB.NewProjectDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ProjectDB))
	if err != nil {
		slog.Error("Error connecting to Project DB", slog.String("error", err.Error()))
		return
	}
}

func initSessionTimings() {
	sessionMaxInactivity = defaultSessionMaxInactivity
	if conf.PreviewConfig.SessionMaxInactivity != "" {
		d, err := utils.ParseDurationString(conf.PreviewConfig.SessionMaxInactivity)
		if err != nil {
			slog.Error("could not parse session_max_inactivity", slog.String("error", err.Error()))
		} else {
			sessionMaxInactivity = d
		}
	}

	sessionCleanupTicker = defaultCleanupInterval
	if conf.PreviewConfig.CleanupInterval != "" {
		d, err := utils.ParseDurationString(conf.PreviewConfig.CleanupInterval)
		if err != nil {
			slog.Error("could not parse cleanup_interval", slog.String("error", err.Error()))
		} else {
			sessionCleanupTicker = d
		}
	}
}
