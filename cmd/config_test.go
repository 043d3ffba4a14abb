package cmd_test

import (
	"testing"
	"time"

	"orders/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() cmd.Config {
	return cmd.Config{
		HTTPPort:               "8080",
		DBHost:                 "localhost",
		DBPort:                 "5432",
		DBUser:                 "orders",
		DBPassword:             "secret",
		DBName:                 "orders",
		DevicesServiceURL:      "http://devices:8080",
		DevicesServiceTimeout:  5 * time.Second,
		IdentityServiceURL:     "http://identity:8080",
		IdentityServiceTimeout: 5 * time.Second,
		JWTSecret:              "c2VjcmV0",
		StanClusterID:          "test-cluster",
		NatsURL:                "nats://localhost:4222",
		RestoreRetryBatch:      50,
		RestoreRetryLease:      30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_ReportsEveryMissingSetting(t *testing.T) {
	cfg := validConfig()
	cfg.DBHost = ""
	cfg.JWTSecret = ""
	cfg.NatsURL = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "NATS_URL is required")
	assert.NotContains(t, err.Error(), "DB_PORT")
}

func TestConfig_Validate_NegativeBatch(t *testing.T) {
	cfg := validConfig()
	cfg.RestoreRetryBatch = -1

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESTORE_RETRY_BATCH")
}

func TestConfig_Validate_LeaseMustOutlastRemoteCalls(t *testing.T) {
	tests := []struct {
		name  string
		lease time.Duration
		ok    bool
	}{
		{name: "zero", lease: 0},
		{name: "shorter than the device timeout", lease: 2 * time.Second},
		{name: "equal to both timeouts", lease: 10 * time.Second},
		{name: "longer than both timeouts", lease: 11 * time.Second, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.RestoreRetryLease = tt.lease

			err := cfg.Validate()

			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "RESTORE_RETRY_LEASE")
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "host=localhost port=5432 user=orders password=secret dbname=orders sslmode=disable", cfg.DSN())

	cfg.DBSslMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestConfig_HTTPAddr(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}
