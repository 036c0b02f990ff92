package config

// Version is the version of neo-testbed, set at build time.
var Version string
