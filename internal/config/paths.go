package config

import "os"

// ConfigPath returns the path to the agent config file.
// It uses $SDR_CONFIG if set, otherwise ./sdr.jsonc next to the
// working directory the agent is launched from.
func ConfigPath() string {
	if v := os.Getenv("SDR_CONFIG"); v != "" {
		return v
	}
	return "sdr.jsonc"
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	if v := os.Getenv("SDR_DOTENV"); v != "" {
		return v
	}
	return ".env"
}
