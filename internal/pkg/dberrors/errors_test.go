package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "coach_students_coach_id_student_id_key"}
	wrapped := fmt.Errorf("insert: %w", pgErr)

	assert.True(t, IsDuplicateConstraintError(wrapped, "coach_students_coach_id_student_id_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "profiles_email_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "profiles_email_key"))
}

func TestCodeHelpers(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: CodeUniqueViolation}))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: CodeForeignKeyViolation}))
	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: CodeCheckViolation}))
	assert.False(t, IsCheckViolation(&pgconn.PgError{Code: CodeUniqueViolation}))
	assert.False(t, IsUniqueViolation(nil))
}
