package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type person struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name,omitempty"`
	Email     string             `bson:"email,omitempty"`
	Secret    string             `bson:"secret,omitempty"`
	Age       int                `bson:"age,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty"`
	Version   int                `bson:"__v"`
}

type personPatch struct {
	Name  *string `bson:"name,omitempty"`
	Email *string `bson:"email,omitempty"`
}

func seedPeople(t *testing.T, s Store[person]) []string {
	t.Helper()
	docs := []*person{
		{Name: "Carol", Email: "carol@example.com", Secret: "c", Age: 41},
		{Name: "alice", Email: "alice@example.com", Secret: "a", Age: 30},
		{Name: "Bob", Email: "bob@test.org", Secret: "b", Age: 30},
	}
	ids, err := s.InsertMany(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	return ids
}

func TestMemoryInsertStampsDocument(t *testing.T) {
	s := NewMemory[person]("email")
	p := &person{Name: "jason", Email: "jason@example.com"}

	id, err := s.Insert(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, id, p.ID.Hex())
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, 0, p.Version)

	got, err := s.FindByID(context.Background(), id, Projection{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jason", got.Name)
}

func TestMemoryUniqueField(t *testing.T) {
	s := NewMemory[person]("email")
	_, err := s.Insert(context.Background(), &person{Name: "a", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = s.Insert(context.Background(), &person{Name: "b", Email: "dup@example.com"})
	require.ErrorIs(t, err, ErrDuplicate)

	n, err := s.Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryFindByIDMissingAndInvalid(t *testing.T) {
	s := NewMemory[person]()
	got, err := s.FindByID(context.Background(), primitive.NewObjectID().Hex(), Projection{})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.FindByID(context.Background(), "nope", Projection{})
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestMemoryFindFilterSortPage(t *testing.T) {
	s := NewMemory[person]()
	seedPeople(t, s)
	ctx := context.Background()

	f := Filter{Any: []Match{{Field: "name", Pattern: "AL"}, {Field: "email", Pattern: "example"}}}
	n, err := s.Count(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	out, err := s.Find(ctx, Filter{}, FindOptions{Sort: ParseSort("age -name")})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"alice", "Bob", "Carol"}, []string{out[0].Name, out[1].Name, out[2].Name})

	out, err = s.Find(ctx, Filter{}, FindOptions{Sort: ParseSort("name"), Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Carol", out[0].Name)

	out, err = s.Find(ctx, Filter{}, FindOptions{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestMemoryWhere(t *testing.T) {
	s := NewMemory[person]()
	seedPeople(t, s)

	out, err := s.Find(context.Background(), Filter{Where: []Eq{{Field: "email", Value: "bob@test.org"}}}, FindOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Bob", out[0].Name)

	n, err := s.Count(context.Background(), Filter{Where: []Eq{{Field: "email", Value: "BOB@test.org"}}})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestMemoryPatternIsLiteral(t *testing.T) {
	s := NewMemory[person]()
	seedPeople(t, s)

	n, err := s.Count(context.Background(), Filter{Any: []Match{{Field: "email", Pattern: ".*"}}})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestMemoryProjection(t *testing.T) {
	s := NewMemory[person]()
	ids := seedPeople(t, s)

	got, err := s.FindByID(context.Background(), ids[0], Projection{Exclude: []string{"secret"}})
	require.NoError(t, err)
	assert.Empty(t, got.Secret)
	assert.Equal(t, "Carol", got.Name)
}

func TestMemoryUpdateByID(t *testing.T) {
	s := NewMemory[person]("email")
	ids := seedPeople(t, s)
	ctx := context.Background()

	before, err := s.FindByID(ctx, ids[1], Projection{})
	require.NoError(t, err)

	name := "Alicia"
	got, err := s.UpdateByID(ctx, ids[1], personPatch{Name: &name}, Projection{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, before.CreatedAt, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(before.UpdatedAt))

	taken := "bob@test.org"
	_, err = s.UpdateByID(ctx, ids[1], personPatch{Email: &taken}, Projection{})
	require.ErrorIs(t, err, ErrDuplicate)

	missing, err := s.UpdateByID(ctx, primitive.NewObjectID().Hex(), personPatch{Name: &name}, Projection{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryUpdateIgnoresReservedFields(t *testing.T) {
	s := NewMemory[person]()
	ids := seedPeople(t, s)

	got, err := s.UpdateByID(context.Background(), ids[0], map[string]any{"_id": primitive.NewObjectID(), "__v": 99, "name": "Caz"}, Projection{})
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID.Hex())
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "Caz", got.Name)
}

func TestMemoryDeleteByID(t *testing.T) {
	s := NewMemory[person]()
	ids := seedPeople(t, s)
	ctx := context.Background()

	got, err := s.DeleteByID(ctx, ids[2], Projection{Exclude: []string{"secret"}})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bob", got.Name)
	assert.Empty(t, got.Secret)

	again, err := s.DeleteByID(ctx, ids[2], Projection{})
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestMemoryDeleteMany(t *testing.T) {
	s := NewMemory[person]()
	ids := seedPeople(t, s)
	ctx := context.Background()

	res, err := s.DeleteMany(ctx, ByIDs(ids[0], "bogus", ids[2]))
	require.NoError(t, err)
	assert.Equal(t, BatchResult{MatchedCount: 2, DeletedCount: 2, Acknowledged: true}, res)

	res, err = s.DeleteMany(ctx, ByIDs())
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.DeletedCount)

	res, err = s.DeleteMany(ctx, Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DeletedCount)

	n, err := s.Count(ctx, Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestParseSort(t *testing.T) {
	assert.Nil(t, ParseSort("  "))
	assert.Equal(t, []SortField{{Field: "name"}, {Field: "age", Desc: true}}, ParseSort("name -age"))
	assert.Equal(t, []SortField{{Field: "email"}}, ParseSort("+email -"))
}
