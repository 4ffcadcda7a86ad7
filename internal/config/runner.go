package config

import (
	"fmt"
	"slices"
	"strings"

	foundationerrors "git.home.luguber.info/inful/ssite/internal/foundation/errors"
)

// RunMode selects when a runner is executed.
type RunMode string

const (
	RunModeBuild RunMode = "Build"
	RunModeDev   RunMode = "Dev"
)

// ParseRunMode accepts the run_on values case-insensitively.
func ParseRunMode(raw string) (RunMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "build":
		return RunModeBuild, nil
	case "dev":
		return RunModeDev, nil
	}
	return "", fmt.Errorf("invalid runner run_on value '%s', must be 'Build' | 'Dev'", raw)
}

// Runner describes an external build tool. Build mode executes Cmd with Args; dev mode
// executes Cmd with WatchArgs for the lifetime of the session.
type Runner struct {
	Name      string
	Cwd       string // relative to the site root; empty means the root itself
	Cmd       string
	Args      []string
	WatchArgs []string
	RunOn     []RunMode
}

// Runs reports whether the runner participates in mode.
func (r Runner) Runs(mode RunMode) bool {
	return slices.Contains(r.RunOn, mode)
}

func newRunner(name string, raw runnerSection) (Runner, error) {
	fail := func(cause string) error {
		return foundationerrors.ConfigError(fmt.Sprintf("config error for the runner %s", name)).
			WithContext("cause", cause).Build()
	}
	if strings.TrimSpace(raw.Cmd) == "" {
		return Runner{}, fail("missing cmd")
	}

	var runOn []RunMode
	if len(raw.RunOn) == 0 {
		runOn = []RunMode{RunModeBuild}
		if len(raw.WatchArgs) > 0 {
			runOn = append(runOn, RunModeDev)
		}
	} else {
		for _, v := range raw.RunOn {
			mode, err := ParseRunMode(v)
			if err != nil {
				return Runner{}, fail(err.Error())
			}
			if !slices.Contains(runOn, mode) {
				runOn = append(runOn, mode)
			}
		}
	}
	if slices.Contains(runOn, RunModeDev) && len(raw.WatchArgs) == 0 {
		return Runner{}, fail("run_on includes Dev but watch_args is missing")
	}

	return Runner{
		Name:      name,
		Cwd:       raw.Cwd,
		Cmd:       raw.Cmd,
		Args:      raw.Args,
		WatchArgs: raw.WatchArgs,
		RunOn:     runOn,
	}, nil
}
