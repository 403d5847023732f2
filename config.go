package rediskit

import (
	"os"
	"strconv"
)

// Environment variables consulted when an option is left at its zero value.
// Resolution order is explicit option, then environment, then hard default —
// first match wins.
const (
	envHost     = "REDIS_HOST"
	envPort     = "REDIS_PORT"
	envPassword = "REDIS_PASSWORD"
	envDB       = "REDIS_DB"
	envTLS      = "REDIS_TLS"

	envClusterHost     = "REDIS_CLUSTER_HOST"
	envClusterPort     = "REDIS_CLUSTER_PORT"
	envClusterPassword = "REDIS_CLUSTER_PASSWORD"
	envClusterTLS      = "REDIS_CLUSTER_TLS"
	envClusterCoverage = "REDIS_CLUSTER_CHECK_COVERAGE"
)

const (
	defaultHost = "localhost"
	defaultPort = 6379
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
