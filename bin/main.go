/*
   Velociraptor - Hunting Evil
   Copyright (C) 2019 Velocidex Innovations.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import (
	"os"
	"runtime/pprof"

	"github.com/alecthomas/kingpin/v2"
	"www.velocidex.com/golang/recyclebin/config"
	"www.velocidex.com/golang/recyclebin/constants"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("recyclebin",
		"A tool for restoring files deleted into Windows Recycle Bins.")

	config_path = app.Flag("config", "The configuration file.").Short('c').
			Envar(constants.CONFIG_ENV_VAR).String()

	verbose_flag = app.Flag(
		"verbose", "Enable verbose logging.").Short('v').
		Default("false").Bool()

	quiet_flag = app.Flag(
		"quiet", "Do not report progress on the console.").Short('q').
		Default("false").Bool()

	logfile_flag = app.Flag(
		"logfile", "Append a JSONL record of all operations to this file.").
		String()

	nocolor_flag = app.Flag(
		"nocolor", "Disable color output.").Default("false").Bool()

	encoding_flag = app.Flag(
		"encoding", "IANA name of the local filesystem encoding "+
			"(default utf-8).").String()

	profile_flag = app.Flag(
		"profile", "Write profiling information to this file.").String()

	command_handlers []CommandHandler
)

func makeDefaultConfigLoader() *config.Loader {
	return new(config.Loader).
		WithVerbose(*verbose_flag).
		WithQuiet(*quiet_flag).
		WithNocolor(*nocolor_flag).
		WithLogFile(*logfile_flag).
		WithFilesystemEncoding(*encoding_flag).
		WithRequiredEncoding().
		WithRequiredLogging().
		WithFileLoader(*config_path).
		WithEnvLoader(constants.CONFIG_ENV_VAR).
		WithNullLoader()
}

// FatalIfError runs a command callback and reports any error the way
// kingpin reports usage errors.
func FatalIfError(command *kingpin.CmdClause, cb func() error) {
	err := cb()
	kingpin.FatalIfError(err, command.FullCommand())
}

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate).DefaultEnvars()
	args := os.Args[1:]

	command := kingpin.MustParse(app.Parse(args))

	if *profile_flag != "" {
		f, err := os.Create(*profile_flag)
		kingpin.FatalIfError(err, "Profile file.")

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
