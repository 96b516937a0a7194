package config

const (
	KeyAccessKey       = "gong_access_key"
	KeyAccessKeySecret = "gong_access_key_secret"
	KeyBaseURL         = "gong_base_url"
	KeyWebRoot         = "gong_web_root"
	KeyUserFullName    = "gong_user_full_name"
	KeyDefaultUserID   = "gong_default_user_id"
	KeyEnvFile         = "env_file"
	KeyLogLevel        = "log_level"
	KeyHTTPTimeout     = "http_timeout_seconds"
	KeyMaxPages        = "max_pages"
)
