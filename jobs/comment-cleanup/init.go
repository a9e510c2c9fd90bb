package main

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/surveyforge/surveyforge-backend/pkg/db"
	"github.com/surveyforge/surveyforge-backend/pkg/utils"

	projectDB "github.com/surveyforge/surveyforge-backend/pkg/db/project"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_PROJECT_DB_USERNAME = "PROJECT_DB_USERNAME"
	ENV_PROJECT_DB_PASSWORD = "PROJECT_DB_PASSWORD"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		ProjectDB db.DBConfigYaml `json:"project_db" yaml:"project_db"`
	} `json:"db_configs" yaml:"db_configs"`

	CleanUpConfig struct {
		CommentRetention string `json:"comment_retention" yaml:"comment_retention"`
	} `json:"clean_up_config" yaml:"clean_up_config"`
}

var conf config

const defaultCommentRetention = 90 * 24 * time.Hour

var (
	projectDBService *projectDB.ProjectDBService
	commentRetention time.Duration
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

	// init db
	initDBs()

	commentRetention = defaultCommentRetention
	if conf.CleanUpConfig.CommentRetention != "" {
		d, err := utils.ParseDurationString(conf.CleanUpConfig.CommentRetention)
		if err != nil {
			slog.Error("could not parse comment_retention", slog.String("error", err.Error()))
		} else {
			commentRetention = d
		}
	}
}

func secretsOverride() {
	// Override secrets from environment variables

	if dbUsername := os.Getenv(ENV_PROJECT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ProjectDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_PROJECT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ProjectDB.Password = dbPassword
	}
}

func initDBs() {
	var err error
	projectDBService, err = projectDB.NewProjectDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ProjectDB))
	if err != nil {
		slog.Error("Error connecting to Project DB", slog.String("error", err.Error()))
		panic(err)
	}
}
