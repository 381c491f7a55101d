package sqlite

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// blogSchema is the canonical test schema: users with posts, a profile,
// an enum role, and a JSON scalar.
func blogSchema() *types.Schema {
	return &types.Schema{
		Models: []types.Model{
			{
				Name: "User",
				Fields: []types.Field{
					{Name: "id", Kind: types.KindInt},
					{Name: "name", Kind: types.KindString},
					{Name: "email", Kind: types.KindString, Unique: true},
					{Name: "profileViews", Kind: types.KindInt},
					{Name: "role", Kind: types.KindEnum, Enum: "Role"},
					{Name: "coinflips", Kind: types.KindJSON},
				},
				Relations: []types.Relation{
					{Name: "posts", Kind: types.HasMany, Model: "Post", ForeignKey: "authorId"},
					{Name: "profile", Kind: types.HasOne, Model: "Profile", ForeignKey: "userId"},
				},
			},
			{
				Name: "Post",
				Fields: []types.Field{
					{Name: "id", Kind: types.KindInt},
					{Name: "title", Kind: types.KindString},
					{Name: "published", Kind: types.KindBool},
					{Name: "authorId", Kind: types.KindInt},
				},
				Relations: []types.Relation{
					{Name: "author", Kind: types.BelongsTo, Model: "User", ForeignKey: "authorId"},
				},
			},
			{
				Name: "Profile",
				Fields: []types.Field{
					{Name: "id", Kind: types.KindInt},
					{Name: "biography", Kind: types.KindString},
					{Name: "userId", Kind: types.KindInt},
				},
			},
		},
		Enums: []types.Enum{{Name: "Role", Values: []string{"USER", "ADMIN"}}},
	}
}

// newAttachedBackend attaches a backend over a fresh temp directory.
func newAttachedBackend(t *testing.T) *Backend {
	t.Helper()

	b := NewBackend()
	err := b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		Schema:  blogSchema(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { b.Detach() })
	return b
}

// seedBlog inserts two users: one with two posts and a profile, one with
// neither.
func seedBlog(t *testing.T, b *Backend) {
	t.Helper()

	users, err := b.Collection("User")
	require.NoError(t, err)
	posts, err := b.Collection("Post")
	require.NoError(t, err)
	profiles, err := b.Collection("Profile")
	require.NoError(t, err)

	_, err = users.Create(types.Record{
		"id": 1, "name": "Alice", "email": "alice@example.com",
		"profileViews": 241, "role": "ADMIN", "coinflips": []any{true, false},
	}, types.Query{})
	require.NoError(t, err)

	_, err = users.Create(types.Record{
		"id": 2, "name": "Bob", "email": "bob@example.com",
		"profileViews": 3, "role": "USER", "coinflips": []any{},
	}, types.Query{})
	require.NoError(t, err)

	_, err = posts.Create(types.Record{
		"id": 1, "title": "Hello world", "published": true, "authorId": 1,
	}, types.Query{})
	require.NoError(t, err)

	_, err = posts.Create(types.Record{
		"id": 2, "title": "Drafts and dragons", "published": false, "authorId": 1,
	}, types.Query{})
	require.NoError(t, err)

	_, err = profiles.Create(types.Record{
		"id": 1, "biography": "Likes databases", "userId": 1,
	}, types.Query{})
	require.NoError(t, err)
}

// runBothStrategies runs fn as a subtest under each relation load
// strategy.
func runBothStrategies(t *testing.T, fn func(t *testing.T, strategy types.Strategy)) {
	for _, strategy := range []types.Strategy{types.StrategyQuery, types.StrategyJoin} {
		t.Run(string(strategy), func(t *testing.T) { fn(t, strategy) })
	}
}

// recordKeys returns the sorted key set of a record.
func recordKeys(rec types.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
