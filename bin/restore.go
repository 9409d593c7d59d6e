package main

import (
	"fmt"

	"www.velocidex.com/golang/recyclebin/restore"
)

var (
	restore_command = app.Command(
		"restore", "Move deleted files out of a Recycle Bin directory "+
			"back to their original paths.")

	restore_command_bin_dir = restore_command.Arg(
		"bin_dir", "The $Recycle.Bin (or RECYCLER) directory to restore from.").
		Required().ExistingDir()

	restore_command_target = restore_command.Flag(
		"restore-target-dir", "Directory the original paths are rebuilt "+
			"under.").Short('t').Default(".").String()

	restore_command_dry_run = restore_command.Flag(
		"dry-run", "Only report what would be restored.").Short('n').
		Default("false").Bool()

	restore_command_since = restore_command.Flag(
		"since", "Only restore files deleted at or after this time.").
		String()
)

func doRestore() error {
	config_obj, err := makeDefaultConfigLoader().LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config file: %w", err)
	}

	err = initTimezone()
	if err != nil {
		return err
	}

	since, err := parseSinceFlag(*restore_command_since)
	if err != nil {
		return err
	}

	restorer, err := restore.New(config_obj, restore.Options{
		TargetDir: *restore_command_target,
		DryRun:    *restore_command_dry_run,
		Since:     since,
	})
	if err != nil {
		return err
	}

	_, err = restorer.Run(*restore_command_bin_dir)
	return err
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case restore_command.FullCommand():
			FatalIfError(restore_command, doRestore)

		default:
			return false
		}
		return true
	})
}
