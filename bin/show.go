package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Velocidex/ordereddict"
	recyclebin "www.velocidex.com/golang/recyclebin"
	"www.velocidex.com/golang/recyclebin/logging"
	"www.velocidex.com/golang/recyclebin/reporting"
	"www.velocidex.com/golang/recyclebin/restore"
)

var (
	show_command = app.Command(
		"show", "Decode $I metadata files without restoring anything.")

	show_command_paths = show_command.Arg(
		"path", "$I files or recycle bin directories to decode.").
		Required().ExistingFilesOrDirs()

	show_command_format = show_command.Flag("format", "Output format to use.").
				Default("text").Enum("text", "json")

	show_command_since = show_command.Flag(
		"since", "Only show files deleted at or after this time.").String()
)

func doShow() error {
	config_obj, err := makeDefaultConfigLoader().LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config file: %w", err)
	}

	err = initTimezone()
	if err != nil {
		return err
	}

	since, err := parseSinceFlag(*show_command_since)
	if err != nil {
		return err
	}

	converter, err := recyclebin.NewPathConverter(
		config_obj.GetFilesystemEncoding())
	if err != nil {
		return err
	}

	logger := logging.GetLogger(config_obj, &logging.ToolComponent)

	var rows []*ordereddict.Dict
	collect := func(ifile string) {
		record, err := recyclebin.ParseFile(ifile, converter)
		if err != nil {
			logger.Warn("cannot decode %v: %v", ifile, err)
			return
		}

		if !since.IsZero() && record.DeletionTime.Before(since) {
			return
		}

		rows = append(rows, reporting.Row(ifile, record))
	}

	for _, path := range *show_command_paths {
		stat, err := os.Stat(path)
		if err != nil {
			return err
		}

		if stat.IsDir() {
			err = restore.WalkMetadataFiles(config_obj, path, collect)
			if err != nil {
				return err
			}
		} else {
			collect(path)
		}
	}

	switch *show_command_format {
	case "text":
		out := io.Writer(os.Stdout)

		pager, err := GetPager(config_obj)
		if err != nil {
			return err
		}
		if pager != nil {
			defer pager.Close()
			out = pager.Writer
		}

		reporting.OutputRowsToTable(rows, out).Render()

	case "json":
		return reporting.OutputRowsToJSON(rows, os.Stdout)
	}

	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case show_command.FullCommand():
			FatalIfError(show_command, doShow)

		default:
			return false
		}
		return true
	})
}
