package main

import (
	"fmt"

	"www.velocidex.com/golang/recyclebin/config"
)

var (
	config_command = app.Command(
		"config", "Manipulate the configuration.")

	config_show_command = config_command.Command(
		"show", "Show the effective configuration.")

	config_generate_command = config_command.Command(
		"generate", "Generate a sample configuration to stdout.")
)

func doShowConfig() error {
	config_obj, err := makeDefaultConfigLoader().LoadAndValidate()
	if err != nil {
		return fmt.Errorf("Unable to load config file: %w", err)
	}

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}

	fmt.Printf("%v", string(res))
	return nil
}

func doGenerateConfig() error {
	config_obj := config.GetDefaultConfig()

	// A starting point for the user to edit.
	config_obj.FilesystemEncoding = "utf-8"
	config_obj.Logfile = "recyclebin_audit.log"

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}

	fmt.Printf("%v", string(res))
	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case config_show_command.FullCommand():
			FatalIfError(config_show_command, doShowConfig)

		case config_generate_command.FullCommand():
			FatalIfError(config_generate_command, doGenerateConfig)

		default:
			return false
		}
		return true
	})
}
