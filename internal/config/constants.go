package config

// Application constants
const (
	AppName    = "Provider License API"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces environment variables; every field also honours
	// its bare name (PORT, STORE_DIR, LCP_URL, ...).
	EnvPrefix = "LICENSE_API"

	// Store backends
	StoreBackendFile = "file"
	StoreBackendS3   = "s3"

	DefaultStoreDir     = "./licenses"
	DefaultMaxBodyBytes = 2 << 20 // 2MB

	DefaultIssuerURL      = "https://lcpserver.onrender.com"
	DefaultIssuerUser     = "admin"
	DefaultIssuerPassword = "adminPass!!"

	// DefaultUserKeyHex is the shared decryption key embedded in every
	// fallback request. It is not a per-reader credential.
	DefaultUserKeyHex  = "2ED06766795D58A4F22D511A672F20A6B096D3FE5B56AF3A744678A9A356FD82"
	DefaultUserKeyHint = "Your site password"

	DefaultIngestSubject = "licenses.ingested"

	// Routes
	HealthEndpoint        = "/healthz"
	MetricsEndpoint       = "/metrics"
	APIBasePath           = "/api/v1"
	LicensesEndpoint      = "/licenses"
	AdminLicensesEndpoint = "/admin/licenses"
)
