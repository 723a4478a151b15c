package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-hod-api/pkg/config"
)

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "hod", Password: "pw", Name: "school"})
	assert.Equal(t, "host=db port=5432 user=hod password=pw dbname=school sslmode=disable", dsn)
}
