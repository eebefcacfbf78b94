package service

import (
	"context"
	"testing"

	"literacy_backend/internal/model"
	"literacy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type countingUsers struct {
	UserStore
	byID, byNumber int
}

func (c *countingUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	c.byID++
	return c.UserStore.FindByID(ctx, id)
}

func (c *countingUsers) FindByIDNumber(ctx context.Context, idNumber string) (*model.User, error) {
	c.byNumber++
	return c.UserStore.FindByIDNumber(ctx, idNumber)
}

type mapCache map[string]primitive.ObjectID

func (m mapCache) Get(_ context.Context, idNumber string) (primitive.ObjectID, bool) {
	id, ok := m[idNumber]
	return id, ok
}

func (m mapCache) Set(_ context.Context, idNumber string, id primitive.ObjectID) {
	m[idNumber] = id
}

func TestResolveStudentReference(t *testing.T) {
	f := setup(t)
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	longNumber := createStudent(t, f, "123456789012345678901234", "Maria", "Santos")
	ctx := context.Background()

	tests := []struct {
		name      string
		candidate string
		wantID    primitive.ObjectID
		wantNum   string
		found     bool
	}{
		{name: "object id", candidate: student.ID.Hex(), wantID: student.ID, wantNum: "2024-001", found: true},
		{name: "id number", candidate: "2024-001", wantID: student.ID, wantNum: "2024-001", found: true},
		{name: "padded id number", candidate: " 2024-001 ", wantID: student.ID, wantNum: "2024-001", found: true},
		{name: "hex-looking id number", candidate: "123456789012345678901234", wantID: longNumber.ID, wantNum: "123456789012345678901234", found: true},
		{name: "unknown id number", candidate: "2099-999"},
		{name: "empty", candidate: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := f.identity.ResolveStudentReference(ctx, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ref.Found)
			assert.Equal(t, tt.wantID, ref.ID)
			assert.Equal(t, tt.wantNum, ref.NumberID)
		})
	}
}

func TestResolveUnknownObjectIDKeepsID(t *testing.T) {
	f := setup(t)
	missing := primitive.NewObjectID()

	ref, err := f.identity.ResolveStudentReference(context.Background(), missing.Hex())
	require.NoError(t, err)
	assert.False(t, ref.Found)
	assert.Equal(t, missing, ref.ID)
	assert.Equal(t, missing, ref.Keys().ObjectID)
}

func TestStudentRefKeysFallBackToRaw(t *testing.T) {
	ref := StudentRef{Raw: "LEGACY-7"}
	keys := ref.Keys()
	assert.Equal(t, "LEGACY-7", keys.IDNumber)
	assert.True(t, keys.ObjectID.IsZero())
}

func TestResolutionMemo(t *testing.T) {
	f := setup(t)
	createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	users := &countingUsers{UserStore: f.users}
	identity := NewIdentityService(users, nil)

	ctx := WithResolutionMemo(context.Background())
	for i := 0; i < 3; i++ {
		ref, err := identity.ResolveStudentReference(ctx, "2024-001")
		require.NoError(t, err)
		assert.True(t, ref.Found)
	}
	assert.Equal(t, 1, users.byNumber)

	// without a memo every call reaches the store
	_, err := identity.ResolveStudentReference(context.Background(), "2024-001")
	require.NoError(t, err)
	assert.Equal(t, 2, users.byNumber)
}

func TestIdentityCache(t *testing.T) {
	f := setup(t)
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	users := &countingUsers{UserStore: f.users}
	cache := mapCache{}
	identity := NewIdentityService(users, cache)

	_, err := identity.ResolveStudentReference(context.Background(), "2024-001")
	require.NoError(t, err)
	assert.Equal(t, student.ID, cache["2024-001"])

	ref, err := identity.ResolveStudentReference(context.Background(), "2024-001")
	require.NoError(t, err)
	assert.True(t, ref.Found)
	assert.Equal(t, student.ID, ref.ID)
	assert.Equal(t, 1, users.byNumber)
}

func TestRequireStudent(t *testing.T) {
	f := setup(t)
	_, err := f.identity.RequireStudent(context.Background(), "nobody")
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

func TestFindOrCreateStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, isNew, err := f.identity.FindOrCreateStudent(ctx, FindOrCreateStudentRequest{
		IDNumber:     "2024-010",
		FirstName:    " Ana ",
		LastName:     "Reyes",
		ReadingLevel: "high_emerging",
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "Ana", created.FirstName)
	assert.Equal(t, model.HighEmerging, created.ReadingLevel)
	assert.Equal(t, model.Student, created.Role)

	again, isNew, err := f.identity.FindOrCreateStudent(ctx, FindOrCreateStudentRequest{IDNumber: "2024-010", FirstName: "Other", LastName: "Name"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, again.ID)

	byName, isNew, err := f.identity.FindOrCreateStudent(ctx, FindOrCreateStudentRequest{FirstName: "ana", LastName: "reyes"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, byName.ID)

	_, _, err = f.identity.FindOrCreateStudent(ctx, FindOrCreateStudentRequest{LastName: "Reyes"})
	assert.True(t, util.IsValidation(err))

	_, _, err = f.identity.FindOrCreateStudent(ctx, FindOrCreateStudentRequest{FirstName: "New", LastName: "Kid", ReadingLevel: "expert"})
	assert.True(t, util.IsValidation(err))
}
