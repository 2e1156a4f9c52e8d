// Package ps enumerates host processes for orphan cleanup.
//
// Enumeration is platform-specific (procfs on Linux, the ps command on
// other Unixes, wmic on Windows) behind a single Lister interface so
// the reaping logic stays platform-independent.
package ps

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Process is one entry in a host process listing. Transient; never
// persisted.
type Process struct {
	PID  int
	PPID int
	Name string
}

// Lister enumerates all currently running processes on the host.
type Lister interface {
	List() ([]Process, error)
}

// systemDenyList names processes that must never be targeted for
// cleanup, matched case-insensitively as substrings. Killing any of
// these would take down the host session rather than a leaked helper.
var systemDenyList = []string{
	"systemd",
	"kthreadd",
	"launchd",
	"kernel_task",
	"windowserver",
	"svchost",
	"csrss",
	"wininit",
	"explorer",
	"xvfb",
}

// IsSystemProcess reports whether name matches the deny-list.
func IsSystemProcess(name string) bool {
	lower := strings.ToLower(name)
	for _, deny := range systemDenyList {
		if strings.Contains(lower, deny) {
			return true
		}
	}
	return false
}

// parsePSOutput parses `ps -axo pid,ppid,comm` output. Unparseable
// rows are skipped; the listing is best-effort by nature.
func parsePSOutput(out string) ([]Process, error) {
	var procs []Process
	scanner := bufio.NewScanner(strings.NewReader(out))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			// Header row (PID PPID COMM).
			first = false
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		// comm may contain spaces; rejoin the remainder.
		procs = append(procs, Process{
			PID:  pid,
			PPID: ppid,
			Name: strings.Join(fields[2:], " "),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ps output: %w", err)
	}
	return procs, nil
}

// parseWMICOutput parses `wmic process get Name,ParentProcessId,ProcessId`
// CSV-less columnar output: Name ParentProcessId ProcessId.
func parseWMICOutput(out string) ([]Process, error) {
	var procs []Process
	scanner := bufio.NewScanner(strings.NewReader(out))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		// Last two columns are numeric; the name may contain spaces.
		pid, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[len(fields)-2])
		if err != nil {
			continue
		}
		procs = append(procs, Process{
			PID:  pid,
			PPID: ppid,
			Name: strings.Join(fields[:len(fields)-2], " "),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan wmic output: %w", err)
	}
	return procs, nil
}
