package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "nested", DefaultFileName))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rs, err := NewRedis(context.Background(), RedisOptions{URL: "redis://" + mr.Addr(), Profile: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })

	return map[string]Storage{
		"memory": NewMemory(),
		"file":   file,
		"redis":  rs,
	}
}

func TestStorageRoundTrip(t *testing.T) {
	t.Parallel()

	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			v, err := st.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			require.Empty(t, v)

			require.NoError(t, st.Put(ctx, map[Key]string{
				KeyAccessToken:  "a1",
				KeyRefreshToken: "r1",
				KeyUserEmail:    "ops@example.com",
			}))
			v, err = st.Get(ctx, KeyRefreshToken)
			require.NoError(t, err)
			require.Equal(t, "r1", v)

			// An empty value removes the key.
			require.NoError(t, st.Put(ctx, map[Key]string{KeyUserEmail: ""}))
			v, err = st.Get(ctx, KeyUserEmail)
			require.NoError(t, err)
			require.Empty(t, v)

			require.NoError(t, st.Delete(ctx, KeyAccessToken, KeyRefreshToken))
			for _, k := range []Key{KeyAccessToken, KeyRefreshToken} {
				v, err = st.Get(ctx, k)
				require.NoError(t, err)
				require.Empty(t, v)
			}
		})
	}
}

func TestFileStoragePermissionsAndCorruption(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFileName)
	f, err := NewFile(path)
	require.NoError(t, err)
	require.Equal(t, path, f.Path())

	require.NoError(t, f.Put(context.Background(), map[Key]string{KeyAccessToken: "tok"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = f.Get(context.Background(), KeyAccessToken)
	require.ErrorContains(t, err, "decode")
}

func TestRedisStorageTTL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rs, err := NewRedis(context.Background(), RedisOptions{
		URL:    "redis://" + mr.Addr(),
		Prefix: "console:",
		TTL:    time.Hour,
	})
	require.NoError(t, err)
	defer rs.Close()

	require.NoError(t, rs.Put(context.Background(), map[Key]string{KeyAccessToken: "tok"}))
	require.True(t, mr.Exists("console:default"))
	require.Equal(t, time.Hour, mr.TTL("console:default"))

	mr.FastForward(2 * time.Hour)
	v, err := rs.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestNewRedisRequiresTarget(t *testing.T) {
	t.Parallel()

	_, err := NewRedis(context.Background(), RedisOptions{})
	require.Error(t, err)

	_, err = NewRedis(context.Background(), RedisOptions{URL: "://bad"})
	require.ErrorContains(t, err, "parse redis url")
}
