package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultAnthropicModel = "claude-sonnet-4-6"
	DefaultMaxToolRounds  = 2

	DefaultElasticsearchPort       = 9200
	DefaultElasticsearchScheme     = "http"
	DefaultElasticsearchMaxRetries = 3

	DefaultChunksIndex      = "course_content"
	DefaultCatalogIndex     = "course_catalog"
	DefaultMaxSearchResults = 5

	DefaultMaxHistory = 2
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
