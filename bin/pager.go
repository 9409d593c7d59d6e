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
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/shlex"
	"github.com/mattn/go-isatty"
	"www.velocidex.com/golang/recyclebin/config"
	"www.velocidex.com/golang/recyclebin/logging"
)

type Pager struct {
	pager  *exec.Cmd
	Writer io.WriteCloser
	Reader io.ReadCloser
	wg     *sync.WaitGroup
}

func NewPager(config_obj *config.Config, command string) (*Pager, error) {
	self := &Pager{}

	// Create a pipe for a pager to use
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	self.Writer = w
	self.Reader = r

	argv, err := shlex.Split(command)
	if err != nil || len(argv) == 0 {
		return nil, err
	}

	argv_args := []string{}
	if len(argv) > 1 {
		argv_args = argv[1:]
	}
	self.pager = exec.Command(argv[0], argv_args...)
	self.pager.Stdin = r
	self.pager.Stdout = os.Stdout
	self.pager.Stderr = os.Stderr
	self.wg = &sync.WaitGroup{}

	err = self.pager.Start()
	if err != nil {
		return nil, err
	}

	self.wg.Add(1)

	// Run the pager
	go func() {
		defer self.Close()
		defer self.wg.Done()

		err := self.pager.Wait()
		if err != nil {
			logging.GetLogger(config_obj, &logging.ToolComponent).
				Error("Error launching pager: %v", err)
		}
	}()

	return self, nil
}

func (self *Pager) Close() {
	self.Writer.Close()
	self.Reader.Close()

	self.wg.Wait()
}

// GetPager consults the PAGER environment variable when stdout is an
// interactive terminal. A nil pager with no error means output goes
// straight to stdout.
func GetPager(config_obj *config.Config) (*Pager, error) {
	pager_cmd := os.Getenv("PAGER")
	if pager_cmd != "" && isatty.IsTerminal(os.Stdout.Fd()) {
		return NewPager(config_obj, pager_cmd)
	}
	return nil, nil
}
