package sqlite

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facet/pkg/types"
)

func TestCreate_ShapedResult(t *testing.T) {
	b := newAttachedBackend(t)
	users, _ := b.Collection("User")

	rec, err := users.Create(types.Record{
		"id": 7, "name": "Cara", "email": "cara@example.com",
		"profileViews": 0, "role": "USER", "coinflips": []any{},
	}, types.Query{Select: types.SelectMap{"id": nil, "email": nil}})
	require.NoError(t, err)

	assert.Equal(t, types.Record{"id": int64(7), "email": "cara@example.com"}, rec)
}

func TestCreate_AutoIncrementPK(t *testing.T) {
	b := newAttachedBackend(t)
	users, _ := b.Collection("User")

	rec, err := users.Create(types.Record{
		"name": "Dana", "email": "dana@example.com",
		"profileViews": 1, "role": "USER", "coinflips": []any{},
	}, types.Query{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec["id"])
}

func TestCreate_UUIDPrimaryKey(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		Schema: &types.Schema{
			Models: []types.Model{{
				Name: "Token",
				Fields: []types.Field{
					{Name: "id", Kind: types.KindString},
					{Name: "label", Kind: types.KindString},
				},
			}},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })

	tokens, err := b.Collection("Token")
	require.NoError(t, err)

	rec, err := tokens.Create(types.Record{"label": "first"}, types.Query{})
	require.NoError(t, err)

	id, ok := rec["id"].(string)
	require.True(t, ok)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestCreate_Validation(t *testing.T) {
	b := newAttachedBackend(t)
	seedBlog(t, b)
	users, _ := b.Collection("User")

	// Unknown field.
	_, err := users.Create(types.Record{"id": 9, "nickname": "x"}, types.Query{})
	assert.ErrorIs(t, err, types.ErrUnknownField)

	// Relation key in data.
	_, err = users.Create(types.Record{
		"id": 9, "name": "Eve", "email": "eve@example.com",
		"profileViews": 0, "role": "USER", "coinflips": []any{},
		"posts": []any{},
	}, types.Query{})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	// Missing required field.
	_, err = users.Create(types.Record{"id": 9, "name": "Eve"}, types.Query{})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	// Value outside the enum.
	_, err = users.Create(types.Record{
		"id": 9, "name": "Eve", "email": "eve@example.com",
		"profileViews": 0, "role": "WIZARD", "coinflips": []any{},
	}, types.Query{})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestUpdate(t *testing.T) {
	b := newAttachedBackend(t)
	seedBlog(t, b)
	users, _ := b.Collection("User")

	rec, err := users.Update(
		types.Where{"email": "bob@example.com"},
		types.Record{"profileViews": 4},
		types.Query{Select: types.SelectMap{"name": nil, "profileViews": nil}})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"name": "Bob", "profileViews": int64(4)}, rec)

	n, err := users.Count(types.Where{"profileViews": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpdate_Errors(t *testing.T) {
	b := newAttachedBackend(t)
	seedBlog(t, b)
	users, _ := b.Collection("User")

	_, err := users.Update(types.Where{"id": 99}, types.Record{"name": "X"}, types.Query{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = users.Update(types.Where{"name": "Alice"}, types.Record{"profileViews": 1}, types.Query{})
	assert.ErrorIs(t, err, types.ErrInvalidWhere)

	_, err = users.Update(types.Where{"id": 1}, types.Record{}, types.Query{})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestDelete(t *testing.T) {
	b := newAttachedBackend(t)
	seedBlog(t, b)
	posts, _ := b.Collection("Post")

	require.NoError(t, posts.Delete(types.Where{"id": 2}))

	n, err := posts.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	err = posts.Delete(types.Where{"id": 2})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCount(t *testing.T) {
	b := newAttachedBackend(t)
	seedBlog(t, b)
	posts, _ := b.Collection("Post")

	n, err := posts.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = posts.Count(types.Where{"published": false})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = posts.Count(types.Where{"nope": 1})
	assert.ErrorIs(t, err, types.ErrUnknownField)
}

func TestWrites_Detached(t *testing.T) {
	b := newAttachedBackend(t)
	users, _ := b.Collection("User")
	require.NoError(t, b.Detach())

	_, err := users.Create(types.Record{"id": 1}, types.Query{})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = users.Update(types.Where{"id": 1}, types.Record{"name": "x"}, types.Query{})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	err = users.Delete(types.Where{"id": 1})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = users.Count(nil)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
