package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCityAndSchoolLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()

	city, err := svc.CreateCity(ctx, fullSession, &dto.CityRequest{Name: "Milano", Region: "Lombardia"})
	require.NoError(t, err)

	school, err := svc.CreateSchool(ctx, fullSession, &dto.SchoolRequest{
		Name:        "Liceo X",
		CityID:      city.ID,
		EmailDomain: "@LiceoX.it",
	})
	require.NoError(t, err)
	assert.Equal(t, "liceox.it", school.EmailDomain)

	err = svc.DeleteCity(ctx, fullSession, city.ID)
	assert.ErrorIs(t, err, ErrHasDependents)

	user := testutil.User(t, f.db, "Luca", "Verdi", "luca@liceox.it", &school.ID, testutil.Date(2024, 1, 1))
	err = svc.DeleteSchool(ctx, fullSession, school.ID)
	assert.ErrorIs(t, err, ErrHasDependents)

	require.NoError(t, f.db.Delete(&models.User{}, user.ID).Error)
	require.NoError(t, svc.DeleteSchool(ctx, fullSession, school.ID))
	require.NoError(t, svc.DeleteCity(ctx, fullSession, city.ID))

	_, err = svc.GetCity(ctx, fullSession, city.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSchoolKeepsCity(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()

	milano := testutil.City(t, f.db, "Milano", "Lombardia")
	school := testutil.School(t, f.db, "Liceo X", milano.ID, "")

	updated, err := svc.UpdateSchool(ctx, fullSession, school.ID, &dto.SchoolUpdateRequest{
		Name:        "Liceo Scientifico X",
		EmailDomain: "LICEOX.EDU.IT",
	})
	require.NoError(t, err)
	assert.Equal(t, "Liceo Scientifico X", updated.Name)
	assert.Equal(t, "liceox.edu.it", updated.EmailDomain)
	assert.Equal(t, milano.ID, updated.CityID)

	var stored models.School
	require.NoError(t, f.db.First(&stored, school.ID).Error)
	assert.Equal(t, milano.ID, stored.CityID)
	assert.Equal(t, "Liceo Scientifico X", stored.Name)

	_, err = svc.UpdateSchool(ctx, fullSession, 999, &dto.SchoolUpdateRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectoryValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()
	city := testutil.City(t, f.db, "Torino", "Piemonte")

	_, err := svc.CreateCity(ctx, fullSession, &dto.CityRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateCity(ctx, fullSession, city.ID, &dto.CityRequest{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSchool(ctx, fullSession, &dto.SchoolRequest{Name: "", CityID: city.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSchool(ctx, fullSession, &dto.SchoolRequest{Name: "Liceo", CityID: city.ID, EmailDomain: "not a domain"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSchool(ctx, fullSession, &dto.SchoolRequest{Name: "Liceo", CityID: 4040})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteCity(ctx, fullSession, 4040), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSchool(ctx, fullSession, 4040), ErrNotFound)

	var schools int64
	require.NoError(t, f.db.Model(&models.School{}).Count(&schools).Error)
	assert.Zero(t, schools)
}

func TestUpdateCity(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()
	city := testutil.City(t, f.db, "Milan", "")

	updated, err := svc.UpdateCity(ctx, fullSession, city.ID, &dto.CityRequest{Name: "Milano", Region: "Lombardia"})
	require.NoError(t, err)
	assert.Equal(t, "Milano", updated.Name)
	assert.Equal(t, "Lombardia", updated.Region)

	_, err = svc.UpdateCity(ctx, fullSession, 999, &dto.CityRequest{Name: "Roma"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCitiesAndSchools(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()

	torino := testutil.City(t, f.db, "Torino", "Piemonte")
	milano := testutil.City(t, f.db, "Milano", "Lombardia")
	testutil.School(t, f.db, "Volta", torino.ID, "")
	testutil.School(t, f.db, "Parini", milano.ID, "parini.it")
	testutil.School(t, f.db, "Beccaria", milano.ID, "")

	cities, err := svc.ListCities(ctx, fullSession)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Milano", cities[0].Name)
	assert.Equal(t, "Torino", cities[1].Name)

	all, err := svc.ListSchools(ctx, fullSession, nil)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.CityName + "/" + s.Name
	}
	assert.Equal(t, []string{"Milano/Beccaria", "Milano/Parini", "Torino/Volta"}, names)

	inTorino, err := svc.ListSchools(ctx, fullSession, &torino.ID)
	require.NoError(t, err)
	require.Len(t, inTorino, 1)
	assert.Equal(t, "Volta", inTorino[0].Name)
	assert.Equal(t, torino.ID, inTorino[0].CityID)
}

func TestDirectoryRequiresFullRole(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()
	city := testutil.City(t, f.db, "Milano", "")

	_, err := svc.ListCities(ctx, usersOnlySession)
	assert.ErrorIs(t, err, access.ErrForbidden)
	_, err = svc.CreateCity(ctx, usersOnlySession, &dto.CityRequest{Name: "Roma"})
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteCity(ctx, usersOnlySession, city.ID), access.ErrForbidden)
	_, err = svc.ListSchools(ctx, nil, nil)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	var n int64
	require.NoError(t, f.db.Model(&models.City{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestNormalizeEmailDomain(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"  ":           "",
		"@LiceoX.it":   "liceox.it",
		" scuola.edu ": "scuola.edu",
		"studenti.it":  "studenti.it",
	}
	for in, want := range cases {
		got, err := NormalizeEmailDomain(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeEmailDomain("bad domain")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteSchoolWithContentOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()

	city := testutil.City(t, f.db, "Torino", "Piemonte")
	school := testutil.School(t, f.db, "Liceo Y", city.ID, "")
	creator := testutil.User(t, f.db, "Sara", "Neri", "sara@example.com", nil, testutil.Date(2024, 1, 1))
	item := testutil.Item(t, f.db, models.KindSpotted, creator.ID, &school.ID, "ciao", testutil.Date(2024, 2, 1))

	err := svc.DeleteSchool(ctx, fullSession, school.ID)
	require.ErrorIs(t, err, ErrHasDependents)
	assert.Contains(t, err.Error(), "content items")

	require.NoError(t, f.db.Delete(&models.ContentItem{}, item.ID).Error)
	require.NoError(t, svc.DeleteSchool(ctx, fullSession, school.ID))
}

func TestDeleteCityWithUsers(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, f.acl)
	ctx := context.Background()

	city := testutil.City(t, f.db, "Bari", "Puglia")
	user := testutil.User(t, f.db, "Gino", "Blu", "gino@example.com", nil, testutil.Date(2024, 1, 1))
	require.NoError(t, f.db.Model(&user).Update("city_id", city.ID).Error)

	err := svc.DeleteCity(ctx, fullSession, city.ID)
	require.ErrorIs(t, err, ErrHasDependents)
	assert.Contains(t, err.Error(), "users")
}

func TestDeleteRowReferencedByForeignKey(t *testing.T) {
	f := newFixture(t)
	city := testutil.City(t, f.db, "Napoli", "Campania")
	school := testutil.School(t, f.db, "Liceo Z", city.ID, "")
	testutil.User(t, f.db, "Ugo", "Rosa", "ugo@example.com", &school.ID, testutil.Date(2024, 1, 1))

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return deleteRow(tx, &models.School{}, "school", school.ID)
	})
	assert.ErrorIs(t, err, ErrHasDependents)

	err = f.db.Transaction(func(tx *gorm.DB) error {
		return deleteRow(tx, &models.City{}, "city", city.ID)
	})
	assert.ErrorIs(t, err, ErrHasDependents)

	var n int64
	require.NoError(t, f.db.Model(&models.School{}).Where("id = ?", school.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	err = f.db.Transaction(func(tx *gorm.DB) error {
		return deleteRow(tx, &models.City{}, "city", 9999)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.False(t, isForeignKeyViolation(nil))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("delete: %w", gorm.ErrForeignKeyViolated)))
	assert.True(t, isForeignKeyViolation(errors.New("constraint failed: FOREIGN KEY constraint failed (1811)")))
	assert.False(t, isForeignKeyViolation(errors.New("constraint failed: UNIQUE constraint failed: cities.name (2067)")))
}
