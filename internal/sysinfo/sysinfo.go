// Package sysinfo collects the neofetch-style system summary shown by the
// pyfetch command. Only Linux is supported; all files are read relative to a
// configurable root so that the collection can be tested against a fake tree.
package sysinfo

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sys/unix"
)

// Unavailable is the value of a field that could not be determined.
const Unavailable = "Unavailable"

const (
	osReleasePath = "etc/os-release"
	cpuInfoPath   = "proc/cpuinfo"
	memInfoPath   = "proc/meminfo"
	nvidiaPath    = "proc/driver/nvidia/gpus"
	drmPath       = "sys/class/drm"

	mebibyte = 1024 * 1024
)

type osProvider interface {
	Hostname() (string, error)
	ReadDir(name string) ([]os.DirEntry, error)
	ReadFile(name string) ([]byte, error)
}

type unixProvider interface {
	Sysinfo(info *unix.Sysinfo_t) error
	Uname(buf *unix.Utsname) error
}

// Snapshot is a point-in-time summary of the host.
type Snapshot struct {
	OS            string
	Host          string
	Kernel        string
	Uptime        time.Duration
	CPU           string
	GPU           string
	MemoryUsedMB  uint64
	MemoryTotalMB uint64
	Resolution    string
}

// Reporter is the principal implementation of the system information
// collection.
type Reporter struct {
	OSOps   osProvider
	UnixOps unixProvider
	Root    string
}

// NewReporter returns a pointer to a new [Reporter]. An empty root means "/".
func NewReporter(osOps osProvider, unixOps unixProvider, root string) *Reporter {
	if root == "" {
		root = "/"
	}

	return &Reporter{
		OSOps:   osOps,
		UnixOps: unixOps,
		Root:    root,
	}
}

// Snapshot collects the summary. Failing kernel queries are returned as an
// error, any other field that cannot be determined is set to [Unavailable].
func (r *Reporter) Snapshot() (Snapshot, error) {
	var uts unix.Utsname
	if err := r.UnixOps.Uname(&uts); err != nil {
		return Snapshot{}, fmt.Errorf("(sysinfo-uname) %w: %w", ErrUnavailable, err)
	}

	var info unix.Sysinfo_t
	if err := r.UnixOps.Sysinfo(&info); err != nil {
		return Snapshot{}, fmt.Errorf("(sysinfo-sysinfo) %w: %w", ErrUnavailable, err)
	}

	sysname := unix.ByteSliceToString(uts.Sysname[:])
	release := unix.ByteSliceToString(uts.Release[:])

	snap := Snapshot{
		OS:         r.osName(sysname),
		Host:       r.hostname(uts),
		Kernel:     strings.TrimSpace(sysname + " " + release),
		Uptime:     time.Duration(info.Uptime) * time.Second,
		CPU:        r.cpu(),
		GPU:        r.gpu(),
		Resolution: r.resolution(),
	}

	snap.MemoryUsedMB, snap.MemoryTotalMB = r.memory(info)

	return snap, nil
}

func (r *Reporter) path(rel string) string {
	return filepath.Join(r.Root, rel)
}

func (r *Reporter) osName(sysname string) string {
	raw, err := r.OSOps.ReadFile(r.path(osReleasePath))
	if err != nil {
		slog.Debug("Failed to read os-release.", "err", err)

		return sysname
	}

	release, err := godotenv.Unmarshal(string(raw))
	if err != nil {
		slog.Debug("Failed to parse os-release.", "err", err)

		return sysname
	}

	if name := release["PRETTY_NAME"]; name != "" {
		return name
	}

	if name := strings.TrimSpace(release["NAME"] + " " + release["VERSION"]); name != "" {
		return name
	}

	return sysname
}

func (r *Reporter) hostname(uts unix.Utsname) string {
	if name, err := r.OSOps.Hostname(); err == nil && name != "" {
		return name
	}

	if name := unix.ByteSliceToString(uts.Nodename[:]); name != "" {
		return name
	}

	return Unavailable
}

// cpu returns the model name with the physical core and logical thread counts.
func (r *Reporter) cpu() string {
	raw, err := r.OSOps.ReadFile(r.path(cpuInfoPath))
	if err != nil {
		slog.Debug("Failed to read cpuinfo.", "err", err)

		return fmt.Sprintf("%s (%dT)", Unavailable, runtime.NumCPU())
	}

	var (
		model    string
		threads  int
		physical string
	)

	cores := make(map[string]struct{})

	for _, line := range strings.Split(string(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "processor":
			threads++
		case "model name", "Model":
			if model == "" {
				model = value
			}
		case "physical id":
			physical = value
		case "core id":
			cores[physical+"/"+value] = struct{}{}
		}
	}

	if threads == 0 {
		threads = runtime.NumCPU()
	}

	if model == "" {
		model = Unavailable
	}

	if len(cores) == 0 {
		return fmt.Sprintf("%s (%dT)", model, threads)
	}

	return fmt.Sprintf("%s (%dC / %dT)", model, len(cores), threads)
}

// gpu prefers the NVIDIA driver's model names and falls back to the drivers
// bound to the DRM cards.
func (r *Reporter) gpu() string {
	if names := r.nvidiaModels(); len(names) > 0 {
		return strings.Join(names, ", ")
	}

	if names := r.drmDrivers(); len(names) > 0 {
		return strings.Join(names, ", ")
	}

	return "GPU not detected."
}

func (r *Reporter) nvidiaModels() []string {
	entries, err := r.OSOps.ReadDir(r.path(nvidiaPath))
	if err != nil {
		return nil
	}

	var names []string

	for _, entry := range entries {
		raw, err := r.OSOps.ReadFile(filepath.Join(r.path(nvidiaPath), entry.Name(), "information"))
		if err != nil {
			continue
		}

		if model := lookupField(raw, "Model"); model != "" {
			names = append(names, model)
		}
	}

	return names
}

func (r *Reporter) drmDrivers() []string {
	entries, err := r.OSOps.ReadDir(r.path(drmPath))
	if err != nil {
		return nil
	}

	var names []string

	for _, entry := range entries {
		if !isCard(entry.Name()) {
			continue
		}

		raw, err := r.OSOps.ReadFile(filepath.Join(r.path(drmPath), entry.Name(), "device", "uevent"))
		if err != nil {
			continue
		}

		uevent, err := godotenv.Unmarshal(string(raw))
		if err != nil || uevent["DRIVER"] == "" {
			continue
		}

		name := uevent["DRIVER"]
		if id := uevent["PCI_ID"]; id != "" {
			name += " [" + id + "]"
		}

		names = append(names, name)
	}

	return names
}

// resolution returns the preferred mode of every connected DRM connector.
func (r *Reporter) resolution() string {
	entries, err := r.OSOps.ReadDir(r.path(drmPath))
	if err != nil {
		return Unavailable
	}

	var modes []string

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "card") || isCard(entry.Name()) {
			continue
		}

		dir := filepath.Join(r.path(drmPath), entry.Name())

		status, err := r.OSOps.ReadFile(filepath.Join(dir, "status"))
		if err != nil || strings.TrimSpace(string(status)) != "connected" {
			continue
		}

		raw, err := r.OSOps.ReadFile(filepath.Join(dir, "modes"))
		if err != nil {
			continue
		}

		if mode, _, _ := strings.Cut(string(raw), "\n"); strings.TrimSpace(mode) != "" {
			modes = append(modes, strings.TrimSpace(mode))
		}
	}

	if len(modes) == 0 {
		return Unavailable
	}

	sort.Strings(modes)

	return strings.Join(modes, ", ")
}

// memory returns used and total memory in MiB. Used memory excludes what
// the kernel reports as available, falling back to free and buffer memory.
func (r *Reporter) memory(info unix.Sysinfo_t) (uint64, uint64) {
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}

	total := uint64(info.Totalram) * unit
	free := (uint64(info.Freeram) + uint64(info.Bufferram)) * unit

	var used uint64
	if free < total {
		used = total - free
	}

	if raw, err := r.OSOps.ReadFile(r.path(memInfoPath)); err == nil {
		if available, ok := parseMemInfo(raw, "MemAvailable"); ok && available <= total {
			used = total - available
		}
	}

	return used / mebibyte, total / mebibyte
}

// parseMemInfo returns the value of key in bytes.
func parseMemInfo(raw []byte, key string) (uint64, bool) {
	value := lookupField(raw, key)
	if value == "" {
		return 0, false
	}

	number, unit, _ := strings.Cut(value, " ")

	n, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		return 0, false
	}

	if strings.EqualFold(unit, "kB") {
		n *= 1024
	}

	return n, true
}

// lookupField returns the trimmed value of the first "key: value" line.
func lookupField(raw []byte, key string) string {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}

	return ""
}

// isCard reports whether name is a DRM card (card0) rather than one of its
// connectors (card0-HDMI-A-1).
func isCard(name string) bool {
	rest, ok := strings.CutPrefix(name, "card")
	if !ok || rest == "" {
		return false
	}

	_, err := strconv.Atoi(rest)

	return err == nil
}
