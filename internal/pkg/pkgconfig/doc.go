// Package pkgconfig reads the service configuration. Modules depend on the
// Config interface; Viper loads config.yaml and lets environment variables
// such as SCORER_BASE_URL override any key.
package pkgconfig
