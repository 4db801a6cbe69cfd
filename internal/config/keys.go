package config

// Etcd server hostname
const ETCD_ADDRESS = "etcd.address"

// Port exposed by the HTTP API
const API_PORT = "api.port"

// Whether Prometheus metrics are exported (true/false)
const METRICS_ENABLED = "metrics.enabled"

// Port serving the /metrics endpoint
const METRICS_PORT = "metrics.port"

// Upper bound on dispatcher transitions per execution (0 = unbounded)
const ENGINE_MAX_STEPS = "engine.maxsteps"

// Legacy Parallel output mode: deep-merge branch outputs into a single
// object instead of the positional array (true/false)
const ENGINE_PARALLEL_MERGE = "engine.parallel.merge"

// Seconds an asynchronous execution result stays available for polling
const RESULT_TTL = "results.ttl"

// Number of machine definitions admitted in the local cache
const CACHE_SIZE = "cache.size"

// Seconds before a cached machine definition expires
const CACHE_ITEM_EXPIRATION = "cache.expiration"

// Seconds between cache janitor runs
const CACHE_CLEANUP = "cache.cleanup"
