package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the meeting
// platform service.
type Config struct {
	HTTPPort    int
	MetricsPort int

	SQLiteDSN string

	SessionSecret string
	SessionTTL    time.Duration

	QueueCap           int
	CoreThreads        int
	MaxThreads         int
	ScaleUpThreshold   float64
	ScaleDownThreshold float64
	LoadCheckInterval  time.Duration
	KeepAlive          time.Duration
	PendingHi          int
	PendingLow         int
	DebounceHits       int
	Cooldown           time.Duration
	QueuePolicy        string

	GeoIPDatabasePath string

	ZookeeperAddrs []string
	Region         string
	AdvertiseHost  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

// Load parses configuration values from the current process environment,
// applying sensible defaults for optional fields while validating required
// values.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		MetricsPort:        9090,
		SQLiteDSN:          "file:meeting.db?_foreign_keys=on",
		SessionTTL:         24 * time.Hour,
		QueueCap:           1024,
		CoreThreads:        4,
		MaxThreads:         8,
		ScaleUpThreshold:   0.75,
		ScaleDownThreshold: 0.25,
		LoadCheckInterval:  100 * time.Millisecond,
		KeepAlive:          5 * time.Second,
		PendingHi:          64,
		PendingLow:         8,
		DebounceHits:       3,
		Cooldown:           500 * time.Millisecond,
		QueuePolicy:        "Block",
		Region:             "default",
		AdvertiseHost:      "127.0.0.1",
		RedisAddr:          "localhost:6379",
		RedisDB:            0,
		CacheTTL:           5 * time.Minute,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if v := strings.TrimSpace(os.Getenv("MEETING_HTTP_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_METRICS_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETING_METRICS_PORT")
		} else {
			cfg.MetricsPort = port
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_SQLITE_DSN")); v != "" {
		cfg.SQLiteDSN = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_SESSION_SECRET")); v == "" {
		missing = append(missing, "MEETING_SESSION_SECRET")
	} else {
		cfg.SessionSecret = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_SESSION_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MEETING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_QUEUE_CAP")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "MEETING_POOL_QUEUE_CAP")
		} else {
			cfg.QueueCap = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_CORE_THREADS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "MEETING_POOL_CORE_THREADS")
		} else {
			cfg.CoreThreads = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_MAX_THREADS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "MEETING_POOL_MAX_THREADS")
		} else {
			cfg.MaxThreads = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_SCALE_UP_THRESHOLD")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			invalid = append(invalid, "MEETING_POOL_SCALE_UP_THRESHOLD")
		} else {
			cfg.ScaleUpThreshold = f
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_SCALE_DOWN_THRESHOLD")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			invalid = append(invalid, "MEETING_POOL_SCALE_DOWN_THRESHOLD")
		} else {
			cfg.ScaleDownThreshold = f
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_LOAD_CHECK_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			invalid = append(invalid, "MEETING_POOL_LOAD_CHECK_INTERVAL")
		} else {
			cfg.LoadCheckInterval = d
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_KEEP_ALIVE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			invalid = append(invalid, "MEETING_POOL_KEEP_ALIVE")
		} else {
			cfg.KeepAlive = d
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_PENDING_HI")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "MEETING_POOL_PENDING_HI")
		} else {
			cfg.PendingHi = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_PENDING_LOW")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, "MEETING_POOL_PENDING_LOW")
		} else {
			cfg.PendingLow = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_DEBOUNCE_HITS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "MEETING_POOL_DEBOUNCE_HITS")
		} else {
			cfg.DebounceHits = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_COOLDOWN")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			invalid = append(invalid, "MEETING_POOL_COOLDOWN")
		} else {
			cfg.Cooldown = d
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_POOL_QUEUE_POLICY")); v != "" {
		switch v {
		case "Block", "Discard", "Overwrite":
			cfg.QueuePolicy = v
		default:
			invalid = append(invalid, "MEETING_POOL_QUEUE_POLICY")
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_GEOIP_DB_PATH")); v != "" {
		cfg.GeoIPDatabasePath = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_ZOOKEEPER_ADDRS")); v != "" {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.ZookeeperAddrs = append(cfg.ZookeeperAddrs, addr)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_REGION")); v != "" {
		cfg.Region = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_ADVERTISE_HOST")); v != "" {
		cfg.AdvertiseHost = v
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_REDIS_ADDR")); v != "" {
		cfg.RedisAddr = v
	}
	cfg.RedisPassword = os.Getenv("MEETING_REDIS_PASSWORD")

	if v := strings.TrimSpace(os.Getenv("MEETING_REDIS_DB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, "MEETING_REDIS_DB")
		} else {
			cfg.RedisDB = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("MEETING_CACHE_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MEETING_CACHE_TTL")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
