// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config carries everything the binaries read from the environment. Binaries
// call godotenv.Load first and fall back to OS environment variables.
type Config struct {
	ListenAddr string

	MongoURI string
	MongoDB  string

	// AMQPURL empty means the server runs the in-process delivery simulator
	// instead of publishing dispatch jobs to RabbitMQ.
	AMQPURL       string
	DispatchQueue string

	// OpenAI-compatible chat completions endpoint used for natural-language
	// segment translation and message suggestions.
	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	// ServerBaseURL is where the vendor worker posts delivery receipts.
	ServerBaseURL string

	// VendorSuccessRate is the simulated delivery success ratio in [0,1].
	VendorSuccessRate float64
}

func Load() Config {
	return Config{
		ListenAddr:        getenv("LISTEN_ADDR", ":8000"),
		MongoURI:          getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getenv("MONGO_DB", "targetly"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		DispatchQueue:     getenv("DISPATCH_QUEUE", "campaign_dispatch"),
		AIBaseURL:         getenv("AI_BASE_URL", "https://api.groq.com/openai/v1"),
		AIAPIKey:          os.Getenv("AI_API_KEY"),
		AIModel:           getenv("AI_MODEL", "llama-3.1-8b-instant"),
		ServerBaseURL:     getenv("SERVER_BASE_URL", "http://localhost:8000"),
		VendorSuccessRate: getenvFloat("VENDOR_SUCCESS_RATE", 0.9),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
