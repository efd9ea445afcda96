package sysinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertwitch/gshell/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

var errNoSyscall = errors.New("syscall not permitted")

type fakeOS struct {
	schema.OS
	hostname string
}

func (f *fakeOS) Hostname() (string, error) {
	if f.hostname == "" {
		return "", errNoSyscall
	}

	return f.hostname, nil
}

type fakeUnix struct {
	unameErr   error
	sysinfoErr error
}

func (f *fakeUnix) Uname(buf *unix.Utsname) error {
	if f.unameErr != nil {
		return f.unameErr
	}

	copy(buf.Sysname[:], "Linux")
	copy(buf.Release[:], "6.1.0-test")
	copy(buf.Nodename[:], "uts-node")

	return nil
}

func (f *fakeUnix) Sysinfo(info *unix.Sysinfo_t) error {
	if f.sysinfoErr != nil {
		return f.sysinfoErr
	}

	info.Uptime = 3725
	info.Unit = 1024
	info.Totalram = 8 * 1024 * 1024
	info.Freeram = 2 * 1024 * 1024

	return nil
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

const cpuInfo = `processor	: 0
model name	: Test CPU 9000
physical id	: 0
core id		: 0

processor	: 1
model name	: Test CPU 9000
physical id	: 0
core id		: 0

processor	: 2
model name	: Test CPU 9000
physical id	: 0
core id		: 1

processor	: 3
model name	: Test CPU 9000
physical id	: 0
core id		: 1
`

// TestSnapshot_Success_FullTree verifies every field is read from a complete
// fake system tree.
func TestSnapshot_Success_FullTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"etc/os-release":                      "NAME=\"Debian GNU/Linux\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n",
		"proc/cpuinfo":                        cpuInfo,
		"proc/meminfo":                        "MemTotal:       8388608 kB\nMemAvailable:   4194304 kB\n",
		"sys/class/drm/card0-HDMI-A-1/status": "connected\n",
		"sys/class/drm/card0-HDMI-A-1/modes":  "1920x1080\n1280x720\n",
		"sys/class/drm/card0-DP-1/status":     "disconnected\n",
		"sys/class/drm/card0-DP-1/modes":      "",
	})
	writeTree(t, root, map[string]string{
		"proc/driver/nvidia/gpus/0000:01:00.0/information": "Model: \t\t NVIDIA GeForce GTX 1060\nIRQ:   42\n",
	})

	reporter := NewReporter(&fakeOS{hostname: "testhost"}, &fakeUnix{}, root)

	snap, err := reporter.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, "Debian GNU/Linux 12 (bookworm)", snap.OS)
	assert.Equal(t, "testhost", snap.Host)
	assert.Equal(t, "Linux 6.1.0-test", snap.Kernel)
	assert.Equal(t, 3725*time.Second, snap.Uptime)
	assert.Equal(t, "Test CPU 9000 (2C / 4T)", snap.CPU)
	assert.Equal(t, "NVIDIA GeForce GTX 1060", snap.GPU)
	assert.Equal(t, uint64(8192), snap.MemoryTotalMB)
	assert.Equal(t, uint64(4096), snap.MemoryUsedMB)
	assert.Equal(t, "1920x1080", snap.Resolution)
}

// TestSnapshot_Success_EmptyTree verifies missing files degrade to fallback
// values instead of failing.
func TestSnapshot_Success_EmptyTree(t *testing.T) {
	t.Parallel()

	reporter := NewReporter(&fakeOS{}, &fakeUnix{}, t.TempDir())

	snap, err := reporter.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, "Linux", snap.OS)
	assert.Equal(t, "uts-node", snap.Host)
	assert.Equal(t, "GPU not detected.", snap.GPU)
	assert.Equal(t, Unavailable, snap.Resolution)
	assert.Contains(t, snap.CPU, Unavailable)
	assert.Equal(t, uint64(8192), snap.MemoryTotalMB)
	assert.Equal(t, uint64(6144), snap.MemoryUsedMB)
}

// TestSnapshot_Success_DRMDriver verifies the DRM card driver is reported
// when no NVIDIA driver information exists.
func TestSnapshot_Success_DRMDriver(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"sys/class/drm/card0/device/uevent": "DRIVER=amdgpu\nPCI_ID=1002:73BF\n",
		"sys/class/drm/renderD128/dev":      "226:128\n",
	})

	reporter := NewReporter(&fakeOS{hostname: "h"}, &fakeUnix{}, root)

	snap, err := reporter.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "amdgpu [1002:73BF]", snap.GPU)
}

// TestSnapshot_Fail_Syscalls verifies failing kernel queries are reported.
func TestSnapshot_Fail_Syscalls(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		ops  *fakeUnix
	}{
		{"Fail_Uname", &fakeUnix{unameErr: errNoSyscall}},
		{"Fail_Sysinfo", &fakeUnix{sysinfoErr: errNoSyscall}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReporter(&fakeOS{}, tc.ops, t.TempDir()).Snapshot()
			require.ErrorIs(t, err, ErrUnavailable)
			require.ErrorIs(t, err, errNoSyscall)
		})
	}
}

func TestIsCard(t *testing.T) {
	t.Parallel()

	assert.True(t, isCard("card0"))
	assert.True(t, isCard("card12"))
	assert.False(t, isCard("card0-HDMI-A-1"))
	assert.False(t, isCard("card"))
	assert.False(t, isCard("renderD128"))
}

func TestNewReporter_DefaultRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/", NewReporter(&schema.OS{}, &schema.Unix{}, "").Root)
}
