package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertwitch/gshell/internal/sysinfo"
	"github.com/dustin/go-humanize"
)

const shellName = "gshell"

func helpCommand(_ context.Context, sh *Shell, _ Invocation) error {
	commands := sh.Registry.Commands()
	rows := make([][]string, 0, len(commands))

	for _, cmd := range commands {
		name := cmd.Name
		if len(cmd.Aliases) > 0 {
			name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}

		rows = append(rows, []string{name, cmd.Usage, cmd.Description})
	}

	sh.out.PrintTable([]string{"Command", "Usage", "Description"}, rows)

	return nil
}

func resetCommand(_ context.Context, sh *Shell, _ Invocation) error {
	user, _ := sh.Session.User()

	sh.out.Clear()
	sh.out.PrintBanner(sh.Version, user)

	return nil
}

func clearCommand(_ context.Context, sh *Shell, _ Invocation) error {
	sh.out.Clear()

	return nil
}

func showDirCommand(_ context.Context, sh *Shell, _ Invocation) error {
	sh.Session.SetShowDir(!sh.Session.ShowDir())

	state := "off"
	if sh.Session.ShowDir() {
		state = "on"
	}

	sh.out.PrintSuccess("Directory display has been turned " + state + ".")

	return nil
}

func pyfetchCommand(_ context.Context, sh *Shell, _ Invocation) error {
	snap, err := sh.reporter.Snapshot()
	if err != nil {
		return err
	}

	sh.out.PrintTable([]string{"pyfetch", "System Information"}, snapshotRows(snap, time.Now()))

	return nil
}

func snapshotRows(snap sysinfo.Snapshot, now time.Time) [][]string {
	uptime := strings.TrimSpace(humanize.RelTime(now.Add(-snap.Uptime), now, "", ""))

	memory := fmt.Sprintf("%dMB / %dMB (%s free)",
		snap.MemoryUsedMB,
		snap.MemoryTotalMB,
		humanize.IBytes((snap.MemoryTotalMB-min(snap.MemoryUsedMB, snap.MemoryTotalMB))*1024*1024),
	)

	return [][]string{
		{"OS", snap.OS},
		{"Host", snap.Host},
		{"Kernel", snap.Kernel},
		{"Uptime", uptime},
		{"Shell", shellName},
		{"Resolution", snap.Resolution},
		{"CPU", snap.CPU},
		{"GPU", snap.GPU},
		{"Memory", memory},
	}
}

func versionCommand(_ context.Context, sh *Shell, _ Invocation) error {
	sh.out.PrintLine(shellName + " - " + sh.Version)

	return nil
}

func exitCommand(_ context.Context, _ *Shell, _ Invocation) error {
	return ErrExit
}
