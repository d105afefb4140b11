// Package user resolves user records and decides when two user ids refer to
// the same user.
//
// Repositories are available for in-memory, file and PostgreSQL storage, and
// any of them can be fronted by an LRU cache:
//
//	repo, err := user.NewRepository("file", user.RepositoryConfig{
//		DataDir:   "./data",
//		Strategy:  user.CaseInsensitive,
//		CacheSize: 1024,
//	})
//
//	u, err := repo.GetUser(ctx, "Alice") // finds "alice" under CaseInsensitive
package user
