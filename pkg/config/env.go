package config

// Environment names accepted in server.environment
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// productionLike reports whether env must not run on development defaults.
func productionLike(env string) bool {
	return env == EnvStaging || env == EnvProduction
}
