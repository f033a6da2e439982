package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"devdir/internal/db"
	"devdir/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

func createUser(t *testing.T, gormDB *gorm.DB, role model.Role) *model.User {
	t.Helper()
	id := uuid.New()
	user := &model.User{
		ID:           id,
		Name:         string(role) + "-" + id.String()[:8],
		Email:        id.String() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, NewUserRepository(gormDB).Create(context.Background(), user))
	return user
}

func createDeveloper(t *testing.T, gormDB *gorm.DB, field model.Field, workType model.WorkType) *model.Developer {
	t.Helper()
	owner := createUser(t, gormDB, model.RoleStudent)
	dev := &model.Developer{
		OwnerUserID: owner.ID,
		FirstName:   "Dev",
		LastName:    owner.Name,
		WorkType:    workType,
		Field:       field,
		Email:       owner.Email,
	}
	require.NoError(t, NewDeveloperRepository(gormDB).Create(context.Background(), dev))
	return dev
}
