package constants

var (
	VERSION = "0.2.0"

	// Environment variable consulted for the default config file
	// location.
	CONFIG_ENV_VAR = "RECYCLEBIN_CONFIG"
)
