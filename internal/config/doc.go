// Package config provides configuration management for the license API.
// It loads configuration from defaults, an optional file and the environment,
// validates it once at startup and hands out an immutable *Config that is
// passed into every component constructor.
//
// # Configuration Sources
//
// Configuration is layered in increasing order of precedence:
//
//  1. Default values (Default)
//  2. Configuration file (YAML or TOML, chosen by extension)
//  3. Environment variables
//
// # Environment Variables
//
// Every field has a bare name and a namespaced name. The namespaced name is
// checked first:
//
//	PORT                  LICENSE_API_SERVER_PORT
//	STORE_DIR             LICENSE_API_STORE_STORE_DIR
//	LCP_URL               LICENSE_API_ISSUER_LCP_URL
//	LCP_ADMIN_USER        LICENSE_API_ISSUER_LCP_ADMIN_USER
//	LCP_ADMIN_PASS        LICENSE_API_ISSUER_LCP_ADMIN_PASS
//	STATIC_USER_KEY_HEX   LICENSE_API_ISSUER_STATIC_USER_KEY_HEX
//	PROVIDER_ADMIN_TOKEN  LICENSE_API_ADMIN_PROVIDER_ADMIN_TOKEN
//
// LICENSE_API_CONFIG_FILE selects the configuration file explicitly;
// otherwise config.yaml, config.toml and their configs/ variants are tried.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
