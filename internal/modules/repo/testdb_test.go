package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

// setupTestDB opens a private in-memory SQLite database with foreign keys enforced.
// A single connection keeps the shared-cache database alive and serializes writers.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.Tables()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@gmail.com", PasswordHashPHC: "x"}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	return u
}

func createProject(t *testing.T, db *gorm.DB, owner *model.User, name, institution string, collaborators ...model.User) *model.Project {
	t.Helper()
	p := &model.Project{
		OwnerID:       owner.ID,
		Name:          name,
		Advisor:       "Dra. Silva",
		Location:      "Brasília",
		Institution:   institution,
		Collaborators: collaborators,
	}
	require.NoError(t, NewProjectRepo(db).Create(context.Background(), p))
	return p
}

func createPlant(t *testing.T, db *gorm.DB, project *model.Project, name string) *model.Plant {
	t.Helper()
	p := &model.Plant{
		ProjectID:      project.ID,
		Name:           name,
		NumIndividuals: 1,
		Scent:          model.ScentIdiopathic,
	}
	require.NoError(t, NewPlantRepo(db).Create(context.Background(), p))
	return p
}

func createVisitor(t *testing.T, db *gorm.DB, plant *model.Plant, name string, on time.Time, typ string, flowers, resources []string) *model.Visitor {
	t.Helper()
	v := &model.Visitor{
		PlantID:     plant.ID,
		Name:        name,
		ObservedOn:  datatypes.Date(on),
		ObservedAt:  datatypes.NewTime(9, 15, 0, 0),
		Latitude:    -15.79,
		Longitude:   -47.88,
		TypeVisitor: typ,
	}
	for _, f := range flowers {
		v.FlowerTypes = append(v.FlowerTypes, model.VisitorFlowerType{Value: f})
	}
	for _, r := range resources {
		v.Resources = append(v.Resources, model.VisitorResource{Value: r})
	}
	require.NoError(t, NewVisitorRepo(db).Create(context.Background(), v))
	return v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
