package config

import (
	"io/ioutil"
	"os"

	"github.com/Velocidex/yaml/v2"
	"www.velocidex.com/golang/recyclebin/constants"
)

// Embed build time constants into here for reporting the tool version.
// https://husobee.github.io/golang/compile/time/variables/2015/12/03/compile-time-const.html
var (
	build_time  string
	commit_hash string
)

// Config controls how recycle bin metadata is decoded and where
// restored files end up.
type Config struct {
	// IANA name of the character encoding the restore filesystem
	// uses for pathnames. Empty means utf-8.
	FilesystemEncoding string `json:"filesystem_encoding,omitempty"`

	// Append a JSONL record of every operation to this file.
	Logfile string `json:"logfile,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
	Quiet   bool `json:"quiet,omitempty"`
	Nocolor bool `json:"nocolor,omitempty"`
}

// Nil safe accessors in the style of proto getters. A nil config
// behaves like the default config.
func (self *Config) GetFilesystemEncoding() string {
	if self == nil {
		return ""
	}
	return self.FilesystemEncoding
}

func (self *Config) GetLogfile() string {
	if self == nil {
		return ""
	}
	return self.Logfile
}

func (self *Config) GetVerbose() bool {
	if self == nil {
		return false
	}
	return self.Verbose
}

func (self *Config) GetQuiet() bool {
	if self == nil {
		return false
	}
	return self.Quiet
}

func (self *Config) GetNocolor() bool {
	if self == nil {
		return false
	}
	return self.Nocolor
}

func GetDefaultConfig() *Config {
	return &Config{}
}

type Version struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

func GetVersion() *Version {
	return &Version{
		Name:      "recyclebin",
		Version:   constants.VERSION,
		Commit:    commit_hash,
		BuildTime: build_time,
	}
}

// Load the config stored in the YAML file and returns a config object.
func LoadConfig(filename string, config *Config) error {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}

	return nil
}

func ParseConfigFromString(config_string []byte, config *Config) error {
	err := yaml.Unmarshal(config_string, config)
	if err != nil {
		return err
	}

	return nil
}

func Encode(config *Config) ([]byte, error) {
	res, err := yaml.Marshal(config)
	return res, err
}

func WriteConfigToFile(filename string, config *Config) error {
	bytes, err := Encode(config)
	if err != nil {
		return err
	}
	err = ioutil.WriteFile(filename, bytes, os.ModePerm)
	if err != nil {
		return err
	}

	return nil
}
