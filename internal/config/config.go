package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(EnvFile())
	if root != nil {
		flags := root.PersistentFlags()
		for flag, key := range map[string]string{
			"gong-base-url": KeyBaseURL,
			"gong-web-root": KeyWebRoot,
			"env-file":      KeyEnvFile,
			"log-level":     KeyLogLevel,
			"max-pages":     KeyMaxPages,
		} {
			if f := flags.Lookup(flag); f != nil {
				_ = viper.BindPFlag(key, f)
			}
		}
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyBaseURL, "https://api.gong.io")
	viper.SetDefault(KeyWebRoot, "https://app.gong.io")
	viper.SetDefault(KeyEnvFile, ".env")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyHTTPTimeout, 30)
	viper.SetDefault(KeyMaxPages, 50)
}

// ValidateCredentials reports an error when the required upstream credentials
// are absent. Callers treat this as fatal before serving any request.
func ValidateCredentials() error {
	if AccessKey() == "" {
		return fmt.Errorf("GONG_ACCESS_KEY is required")
	}
	if AccessKeySecret() == "" {
		return fmt.Errorf("GONG_ACCESS_KEY_SECRET is required")
	}
	return nil
}

func AccessKey() string       { return viper.GetString(KeyAccessKey) }
func AccessKeySecret() string { return viper.GetString(KeyAccessKeySecret) }
func BaseURL() string         { return viper.GetString(KeyBaseURL) }
func WebRoot() string         { return viper.GetString(KeyWebRoot) }
func UserFullName() string    { return viper.GetString(KeyUserFullName) }
func DefaultUserID() string   { return viper.GetString(KeyDefaultUserID) }
func EnvFile() string {
	if path := viper.GetString(KeyEnvFile); path != "" {
		return path
	}
	return ".env"
}
func LogLevel() string       { return viper.GetString(KeyLogLevel) }
func HTTPTimeoutSeconds() int { return viper.GetInt(KeyHTTPTimeout) }
func MaxPages() int           { return viper.GetInt(KeyMaxPages) }
