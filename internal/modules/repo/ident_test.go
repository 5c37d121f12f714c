package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

func TestPlantCode_SequenceAndReuse(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	p1 := createProject(t, db, owner, "Cerrado Sul", "UnB")
	p2 := createProject(t, db, owner, "Mata Atlântica", "USP")

	rosa := createPlant(t, db, p1, "Rosa")
	tulipa := createPlant(t, db, p1, "Tulipa")
	rosaAgain := createPlant(t, db, p2, "Rosa")

	assert.Equal(t, "PA001", rosa.Code)
	assert.Equal(t, "PA002", tulipa.Code)
	assert.Equal(t, "PA001", rosaAgain.Code, "the counter is global and names are shared across projects")
}

func TestPlantCode_NormalizedMatchBoundary(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	p := createProject(t, db, owner, "Cerrado Sul", "UnB")

	base := createPlant(t, db, p, "Ipê Roxo")
	require.Equal(t, "PA001", base.Code)

	for _, same := range []string{"ipê roxo", "IPE ROXO", "Ipe  Roxo", "iperoxo"} {
		got := createPlant(t, db, p, same)
		assert.Equal(t, "PA001", got.Code, same)
	}

	other := createPlant(t, db, p, "Ipê Roxo Anão")
	assert.Equal(t, "PA002", other.Code)

	var registered int64
	require.NoError(t, db.Model(&model.PlantCode{}).Count(&registered).Error)
	assert.Equal(t, int64(2), registered)
}

func TestPlantCode_SeedsFromExistingCodes(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&model.PlantCode{NormalizedName: "legado", Code: "PA041"}).Error)
	require.NoError(t, db.Create(&model.PlantCode{NormalizedName: "antigo", Code: "PA007"}).Error)

	owner := createUser(t, db, "ana")
	p := createProject(t, db, owner, "Cerrado Sul", "UnB")

	assert.Equal(t, "PA042", createPlant(t, db, p, "Nova").Code)
	assert.Equal(t, "PA041", createPlant(t, db, p, "Legado").Code)
}

func TestPlantCode_EmptyNameRejected(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	p := createProject(t, db, owner, "Cerrado Sul", "UnB")

	err := NewPlantRepo(db).Create(context.Background(), &model.Plant{
		ProjectID: p.ID, Name: "   ", NumIndividuals: 1, Scent: model.ScentIdiopathic,
	})
	assert.ErrorIs(t, err, ErrEmptyPlantName)

	var count int64
	require.NoError(t, db.Model(&model.Plant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlantCode_ConcurrentDistinctNames(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	p := createProject(t, db, owner, "Cerrado Sul", "UnB")
	r := NewPlantRepo(db)

	const n = 12
	codes := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plant := &model.Plant{ProjectID: p.ID, Name: fmt.Sprintf("Especie %d", i), NumIndividuals: 1, Scent: model.ScentSympathetic}
			errs[i] = r.Create(context.Background(), plant)
			codes[i] = plant.Code
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[codes[i]], "duplicate code %s", codes[i])
		seen[codes[i]] = true
	}
	assert.Len(t, seen, n)
}

func TestVisitorNumber_PerPlant(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	p := createProject(t, db, owner, "Cerrado Sul", "UnB")
	a := createPlant(t, db, p, "Rosa")
	b := createPlant(t, db, p, "Tulipa")

	on := date(2024, 1, 1)
	assert.Equal(t, int64(1), createVisitor(t, db, a, "Apis", on, "", nil, nil).Number)
	assert.Equal(t, int64(1), createVisitor(t, db, b, "Bombus", on, "", nil, nil).Number)
	assert.Equal(t, int64(2), createVisitor(t, db, a, "Xylocopa", on, "", nil, nil).Number)
	assert.Equal(t, int64(2), createVisitor(t, db, b, "Trigona", on, "", nil, nil).Number)
	assert.Equal(t, int64(3), createVisitor(t, db, a, "Melipona", on, "", nil, nil).Number)
}

func TestVisitorNumber_ConcurrentSamePlant(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	p := createProject(t, db, owner, "Cerrado Sul", "UnB")
	plant := createPlant(t, db, p, "Rosa")
	r := NewVisitorRepo(db)

	const n = 10
	numbers := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := &model.Visitor{
				PlantID:    plant.ID,
				Name:       fmt.Sprintf("Visitante %d", i),
				ObservedOn: datatypes.Date(date(2024, 1, 1)),
				Latitude:   -15.79,
				Longitude:  -47.88,
			}
			errs[i] = r.Create(context.Background(), v)
			numbers[i] = v.Number
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, got := range numbers {
		assert.Equal(t, int64(i+1), got)
	}
}

func TestVisitorNumber_UnknownPlant(t *testing.T) {
	db := setupTestDB(t)
	err := NewVisitorRepo(db).Create(context.Background(), &model.Visitor{
		PlantID: [16]byte{1}, Name: "Apis",
	})
	require.Error(t, err)
}
