package repository

import "strings"

// Env selects which backend environment a run belongs to.
type Env string

const (
	EnvSim  Env = "SIM"
	EnvProd Env = "PROD"
)

// IsValidEnv returns true if env is a supported environment.
func IsValidEnv(env Env) bool {
	switch env {
	case EnvSim, EnvProd:
		return true
	default:
		return false
	}
}

// DefaultEnv returns the default environment.
func DefaultEnv() Env { return EnvSim }

// NormalizeEnv converts a raw string to a valid environment (or default).
func NormalizeEnv(s string) Env {
	if s == "" {
		return DefaultEnv()
	}
	env := Env(strings.ToUpper(s))
	if IsValidEnv(env) {
		return env
	}
	return DefaultEnv()
}
