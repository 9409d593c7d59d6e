package main

import (
	"www.velocidex.com/golang/recyclebin/utils"
)

var (
	timezone_flag = app.Flag(
		"timezone", "Display timezone for deletion times (e.g. "+
			"Australia/Brisbane). If not set we use UTC").String()
)

func initTimezone() error {
	if *timezone_flag != "" {
		return utils.SetGlobalTimezone(*timezone_flag)
	}
	return nil
}
