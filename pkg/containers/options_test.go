package containers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derror "github.com/hanfei1991/conqueue/pkg/errors"
)

func writeOptionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backoff.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBackoffOptions(t *testing.T) {
	t.Parallel()

	path := writeOptionsFile(t, `
spin-limit = 16
yield-limit = 256
sleep-base = "200us"
`)
	opts, err := LoadBackoffOptions(path)
	require.NoError(t, err)
	require.Equal(t, 16, opts.SpinLimit)
	require.Equal(t, 256, opts.YieldLimit)
	require.Equal(t, 200*time.Microsecond, opts.SleepBase.Duration)
	// an absent cap is derived from the base
	require.Equal(t, 3200*time.Microsecond, opts.SleepCap.Duration)
}

func TestLoadBackoffOptionsFillsDefaults(t *testing.T) {
	t.Parallel()

	path := writeOptionsFile(t, "")
	opts, err := LoadBackoffOptions(path)
	require.NoError(t, err)
	require.Equal(t, DefaultBackoffOptions(), opts)
}

func TestLoadBackoffOptionsUnknownItem(t *testing.T) {
	t.Parallel()

	path := writeOptionsFile(t, `
spin-limit = 1
nap-limit = 3
`)
	_, err := LoadBackoffOptions(path)
	require.Error(t, err)
	require.True(t, derror.ErrConfigUnknownItem.Equal(err))
	require.Contains(t, err.Error(), "nap-limit")
}

func TestLoadBackoffOptionsInvalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		`spin-limit = -1`,
		`yield-limit = -8`,
		`sleep-base = "-1ms"`,
		"sleep-base = \"2ms\"\nsleep-cap = \"1ms\"",
	}
	for _, content := range cases {
		path := writeOptionsFile(t, content)
		_, err := LoadBackoffOptions(path)
		require.Error(t, err, "content: %s", content)
		require.True(t, derror.ErrConfigInvalid.Equal(err), "content: %s", content)
	}
}

func TestLoadBackoffOptionsDecodeFailure(t *testing.T) {
	t.Parallel()

	_, err := LoadBackoffOptions(filepath.Join(t.TempDir(), "no-such-file.toml"))
	require.Error(t, err)
	require.True(t, derror.ErrConfigDecodeFile.Equal(err))

	path := writeOptionsFile(t, `spin-limit = [`)
	_, err = LoadBackoffOptions(path)
	require.Error(t, err)
	require.True(t, derror.ErrConfigDecodeFile.Equal(err))
}

func TestBackoffOptionsDump(t *testing.T) {
	t.Parallel()

	opts := DefaultBackoffOptions()
	tomlStr, err := opts.Toml()
	require.NoError(t, err)
	require.Contains(t, tomlStr, "spin-limit = 8")
	require.Contains(t, tomlStr, "yield-limit = 128")

	require.Contains(t, opts.String(), `"spin-limit":8`)
}

func TestNewLinkedQueueDefaults(t *testing.T) {
	t.Parallel()

	q := NewLinkedQueue[int]()
	require.Equal(t, *DefaultBackoffOptions(), q.backoffOpts)
}

func TestWithBackoffTakenVerbatim(t *testing.T) {
	t.Parallel()

	q := NewLinkedQueue[int](WithBackoff(BackoffOptions{}))
	require.Equal(t, BackoffOptions{}, q.backoffOpts)
}
