package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	duplicate := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}

	assert.True(t, isUniqueViolation(duplicate))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", duplicate)))

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"})) // FK violation
}
