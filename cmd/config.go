package cmd

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Config is the process configuration read from the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	DevicesServiceURL      string
	DevicesServiceTimeout  time.Duration
	IdentityServiceURL     string
	IdentityServiceTimeout time.Duration
	ServiceToken           string
	JWTSecret              string

	StanClusterID        string
	StanClientID         string
	NatsURL              string
	NotificationsSubject string
	NotificationsQueue   string
	NotificationsDurable string

	// RedisAddr is optional; without it idempotency keys live in process memory.
	RedisAddr      string
	IdempotencyTTL time.Duration

	RestoreRetrySchedule string
	RestoreRetryBatch    int

	// RestoreRetryLease is how long a claimed restoration stays hidden from
	// other restorers. A finishing request looks up recipients and then calls
	// the device service while holding its claim, so the lease must outlast both.
	RestoreRetryLease time.Duration

	LogMode      string
	OTLPEndpoint string
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	required := []struct{ key, value string }{
		{"HTTP_PORT", c.HTTPPort},
		{"DB_HOST", c.DBHost},
		{"DB_PORT", c.DBPort},
		{"DB_USER", c.DBUser},
		{"DB_NAME", c.DBName},
		{"DEVICES_SERVICE_URL", c.DevicesServiceURL},
		{"IDENTITY_SERVICE_URL", c.IdentityServiceURL},
		{"JWT_SECRET", c.JWTSecret},
		{"STAN_CLUSTER_ID", c.StanClusterID},
		{"NATS_URL", c.NatsURL},
	}

	var errList []error
	for _, r := range required {
		if r.value == "" {
			errList = append(errList, fmt.Errorf("%s is required", r.key))
		}
	}
	if c.RestoreRetryBatch < 0 {
		errList = append(errList, errors.New("RESTORE_RETRY_BATCH must not be negative"))
	}
	if limit := c.DevicesServiceTimeout + c.IdentityServiceTimeout; c.RestoreRetryLease <= limit {
		errList = append(errList, fmt.Errorf(
			"RESTORE_RETRY_LEASE (%s) must be longer than DEVICES_SERVICE_TIMEOUT plus IDENTITY_SERVICE_TIMEOUT (%s)",
			c.RestoreRetryLease, limit))
	}
	return errors.Join(errList...)
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	sslMode := c.DBSslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// HTTPAddr is the listen address of the HTTP server.
func (c Config) HTTPAddr() string {
	return net.JoinHostPort("0.0.0.0", c.HTTPPort)
}
