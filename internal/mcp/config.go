package mcp

import (
	"github.com/roivaz/gong-mcp/internal/config"
	"github.com/roivaz/gong-mcp/internal/directory"
	"github.com/roivaz/gong-mcp/internal/gong"
	"github.com/roivaz/gong-mcp/internal/logging"
	"github.com/roivaz/gong-mcp/internal/mcp/tools"
	"github.com/roivaz/gong-mcp/internal/service"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Logger       logging.Logger
}

func DefaultConfig() Config {
	baseLogger := logging.New(logging.LevelLogger(config.LogLevel()))

	client := gong.NewClient(gong.ClientConfig{
		BaseURL:   config.BaseURL(),
		AccessKey: config.AccessKey(),
		Secret:    config.AccessKeySecret(),
		Logger:    baseLogger.WithName("gong"),
	})

	dir := directory.New(directory.Config{
		Client:        client,
		TargetName:    config.UserFullName(),
		DefaultUserID: config.DefaultUserID(),
		MaxPages:      config.MaxPages(),
		Logger:        baseLogger.WithName("directory"),
		Persist: func(id string) error {
			return config.SetEnvValue(config.EnvFile(), "GONG_DEFAULT_USER_ID", id)
		},
	})

	svc := service.New(service.Config{
		Client:    client,
		Directory: dir,
		WebRoot:   config.WebRoot(),
		MaxPages:  config.MaxPages(),
		Logger:    baseLogger.WithName("service"),
	})

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"list_calls":          &tools.ListCallsHandler{Service: svc},
			"list_detailed_calls": &tools.ListDetailedCallsHandler{Service: svc},
			"list_activity_stats": &tools.ListActivityStatsHandler{Service: svc},
			"my_calls_range":      &tools.MyCallsRangeHandler{Service: svc},
			"my_calls_today":      &tools.MyCallsTodayHandler{Service: svc},
			"list_users":          &tools.ListUsersHandler{Service: dir},
			"get_transcripts":     &tools.GetTranscriptsHandler{Service: svc},
		},
		Logger: baseLogger.WithName("mcp"),
	}
}
