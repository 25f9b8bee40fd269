package pgstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/csql"
	"github.com/bfp-echague/firetrack/core/rest"
	"github.com/bfp-echague/firetrack/tracker"
)

// testStore opens a store on the database in POSTGRES with a throwaway
// schema. Without POSTGRES the database tests are skipped.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("POSTGRES")
	if dsn == "" {
		t.Skip("set POSTGRES to run the database tests")
	}
	db := csql.OpenWithSchema(dsn, "firetrack_test")
	db.ClearSchema()
	t.Cleanup(func() {
		db.ClearSchema()
		db.Close()
	})
	return New(db, nil)
}

func TestBarangayRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	missing, err := s.Barangay(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := s.CreateBarangay(ctx, tracker.BarangayInput{Name: "Soyung"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// duplicate names violate the unique constraint
	_, err = s.CreateBarangay(ctx, tracker.BarangayInput{Name: "Soyung"})
	assert.Error(t, err)

	name := "Cabugao"
	updated, err := s.UpdateBarangay(ctx, created.ID, tracker.BarangayPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Cabugao", updated.Name)

	list, err := s.Barangays(ctx, "cabu")
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := s.DeleteBarangay(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	gone, err := s.DeleteBarangay(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBatchBarangayCreate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.CreateBarangays(ctx, []tracker.BarangayInput{
		{Name: "Soyung"}, {Name: "Cabugao"}, {Name: "Ipil"},
	})
	require.NoError(t, err)
	assert.Len(t, created, 3)

	count, err := s.CountBarangays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func (s *Store) mustSeedIncidentRefs(t *testing.T, ctx context.Context) (int64, int64) {
	t.Helper()
	barangay, err := s.CreateBarangay(ctx, tracker.BarangayInput{Name: "Soyung"})
	require.NoError(t, err)
	category, err := s.CreateCategory(ctx, tracker.CategoryInput{Name: "Low", Severity: 0})
	require.NoError(t, err)
	return barangay.ID, category.ID
}

func TestIncidentListing(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	barangayID, categoryID := s.mustSeedIncidentRefs(t, ctx)

	input := tracker.IncidentInput{
		Name:               "Market fire",
		Location:           tracker.Location{Latitude: "16.7050", Longitude: "121.6766"},
		BarangayID:         barangayID,
		Causes:             []string{"Electrical"},
		StructuresInvolved: []string{"Market"},
		CategoryID:         categoryID,
	}
	created, err := s.CreateIncident(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, created.Barangay)
	assert.Equal(t, "Soyung", created.Barangay.Name)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Low", created.Category.Name)
	assert.Equal(t, []string{"Electrical"}, created.Causes)

	// foreign keys are enforced
	bad := input
	bad.BarangayID = 99999
	_, err = s.CreateIncident(ctx, bad)
	assert.Error(t, err)

	archived := true
	_, err = s.UpdateIncident(ctx, created.ID, tracker.IncidentPatch{Archived: &archived})
	require.NoError(t, err)

	list, err := s.Incidents(ctx, tracker.IncidentFilter{}, rest.FindManyOptions{Take: 10})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.Incidents(ctx, tracker.IncidentFilter{IncludeArchived: true}, rest.FindManyOptions{Take: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIncidentCursor(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	barangayID, categoryID := s.mustSeedIncidentRefs(t, ctx)

	ids := []int64{}
	for _, name := range []string{"One", "Two", "Three"} {
		created, err := s.CreateIncident(ctx, tracker.IncidentInput{
			Name:       name,
			Location:   tracker.Location{Latitude: "16.7", Longitude: "121.6"},
			BarangayID: barangayID,
			CategoryID: categoryID,
			Causes:     []string{},
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	page, err := s.Incidents(ctx, tracker.IncidentFilter{},
		rest.FindManyOptions{CursorID: &ids[0], Skip: 1, Take: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestSessionLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, tracker.UserInput{
		Username:  "kim",
		Email:     "kim@example.com",
		Privilege: access.PrivilegeBasic,
	}, "not-a-real-hash")
	require.NoError(t, err)

	now := time.Now()
	session := access.Session{
		TokenHash: access.HashToken("the-token"),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresOn: now.Add(time.Hour),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	found, auth, err := s.LookupSession(ctx, session.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, auth.UserID)
	assert.Equal(t, "kim", auth.Username)
	assert.Equal(t, access.PrivilegeBasic, auth.Privilege)

	missing, _, err := s.LookupSession(ctx, access.HashToken("other"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	loggedOut, _, err := s.LogoutSession(ctx, session.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, loggedOut)
	assert.True(t, loggedOut.LoggedOut)

	gone, _, err := s.LogoutSession(ctx, access.HashToken("other"))
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUserQueries(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, tracker.UserInput{
		Username: "root", Email: "root@example.com", Privilege: access.PrivilegeAdmin,
	}, "hash-a")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, tracker.UserInput{
		Username: "kim", Email: "kim@example.com", Privilege: access.PrivilegeBasic,
	}, "hash-b")
	require.NoError(t, err)

	admins, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	found, err := s.UserByUsername(ctx, "kim")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "hash-b", found.PasswordHash)

	users, err := s.Users(ctx, "ki")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "kim", users[0].Username)
}
