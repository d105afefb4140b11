package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultsToAnonymous(t *testing.T) {
	a := FromContext(context.Background())

	require.NotNil(t, a)
	assert.Equal(t, "anonymous", a.Name())
	assert.False(t, a.IsAuthenticated())
	assert.Empty(t, a.Authorities())
}

func TestNewContext(t *testing.T) {
	alice := New("alice", true, nil, Authenticated)
	ctx := NewContext(context.Background(), alice)

	assert.Same(t, alice, FromContext(ctx))
}

func TestRunAs_RestoresCallerIdentity(t *testing.T) {
	alice := New("alice", true, nil, Authenticated, "admins")
	ctx := NewContext(context.Background(), alice)
	sub := Substitute(alice, "admins", Authenticated)

	var seen *Authentication
	err := RunAs(ctx, sub, func(ctx context.Context) error {
		seen = FromContext(ctx)
		return nil
	})

	require.NoError(t, err)
	assert.Same(t, sub, seen)
	assert.Same(t, alice, FromContext(ctx))
}

func TestRunAs_PropagatesError(t *testing.T) {
	alice := New("alice", true, nil, Authenticated)
	ctx := NewContext(context.Background(), alice)
	boom := errors.New("boom")

	err := RunAs(ctx, Substitute(alice, Authenticated), func(context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Same(t, alice, FromContext(ctx))
}

func TestNewContext_ConcurrentUnitsOfWork(t *testing.T) {
	root := context.Background()
	var wg sync.WaitGroup
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			own := New(name, true, nil, Authenticated, Authority(name+"-group"))
			ctx := NewContext(root, own)
			_ = RunAs(ctx, Substitute(own, Authority(name+"-group"), Authenticated), func(ctx context.Context) error {
				assert.Equal(t, name+"-group", FromContext(ctx).Name())
				return nil
			})
			assert.Equal(t, name, FromContext(ctx).Name())
		}(name)
	}
	wg.Wait()
	assert.Equal(t, "anonymous", FromContext(root).Name())
}
