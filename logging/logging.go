package logging

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/Velocidex/file-rotatelogs"
	"github.com/gookit/color"
	"github.com/mattn/go-isatty"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

var (
	SuppressLogging = false
	NoColor         = false

	GenericComponent = "Recyclebin"
	ToolComponent    = "RecyclebinTool"
	RestoreComponent = "RecyclebinRestore"

	// The node manager is initialized once and reset when the
	// configuration changes.
	manager_mu sync.Mutex
	Manager    *LogManager

	prelog_mu sync.Mutex
	prelogs   []string

	tag_regex         = regexp.MustCompile("<([a-zA-Z_]+)>")
	closing_tag_regex = regexp.MustCompile("</>")
)

func init() {
	// Only colorize output when attached to an interactive
	// terminal.
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		NoColor = true
	}
}

// Config is the part of the tool configuration this package
// consumes. It is declared here so the config package can itself log
// while the real configuration is still being loaded.
type Config interface {
	GetVerbose() bool
	GetNocolor() bool
	GetLogfile() string
}

// A nil config behaves like the default config.
type emptyConfig struct{}

func (self emptyConfig) GetVerbose() bool   { return false }
func (self emptyConfig) GetNocolor() bool   { return false }
func (self emptyConfig) GetLogfile() string { return "" }

type LogContext struct {
	*logrus.Logger
}

func (self *LogContext) Debug(format string, v ...interface{}) {
	if self.Logger != nil {
		self.Logger.Debug(fmt.Sprintf(format, v...))
	}
}

func (self *LogContext) Info(format string, v ...interface{}) {
	if self.Logger != nil {
		self.Logger.Info(fmt.Sprintf(format, v...))
	}
}

func (self *LogContext) Warn(format string, v ...interface{}) {
	if self.Logger != nil {
		self.Logger.Warn(fmt.Sprintf(format, v...))
	}
}

func (self *LogContext) Error(format string, v ...interface{}) {
	if self.Logger != nil {
		self.Logger.Error(fmt.Sprintf(format, v...))
	}
}

func (self *LogContext) LogWithLevel(
	level logrus.Level, format string, v ...interface{}) {
	switch level {
	case logrus.DebugLevel:
		self.Debug(format, v...)
	case logrus.WarnLevel:
		self.Warn(format, v...)
	case logrus.ErrorLevel:
		self.Error(format, v...)
	default:
		self.Info(format, v...)
	}
}

type LogManager struct {
	mu       sync.Mutex
	contexts map[*string]*LogContext
}

func NewLogManager() *LogManager {
	return &LogManager{
		contexts: make(map[*string]*LogContext),
	}
}

// GetLogger returns the cached logger for the component, creating it
// on first use.
func (self *LogManager) GetLogger(
	config_obj Config, component *string) *LogContext {
	if config_obj == nil {
		config_obj = emptyConfig{}
	}

	self.mu.Lock()
	defer self.mu.Unlock()

	ctx, pres := self.contexts[component]
	if !pres {
		var err error
		ctx, err = self.makeNewComponent(config_obj, component)
		if err != nil {
			// If we can not log to the log file we can still
			// deliver messages to the console.
			Prelog("<red>Unable to set up logging</>: %v", err)
			ctx, _ = self.makeNewComponent(emptyConfig{}, component)
		}
		self.contexts[component] = ctx
	}
	return ctx
}

func (self *LogManager) Reset() {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.contexts = make(map[*string]*LogContext)
}

func (self *LogManager) makeNewComponent(
	config_obj Config, component *string) (*LogContext, error) {

	Log := logrus.New()
	Log.Out = ioutil.Discard
	Log.Level = logrus.DebugLevel

	// All messages are recorded in the log file, including debug
	// messages that are not echoed to the console.
	if config_obj.GetLogfile() != "" {
		rotator, err := getRotator(config_obj.GetLogfile())
		if err != nil {
			return nil, err
		}

		pathmap := lfshook.WriterMap{
			logrus.DebugLevel: rotator,
			logrus.InfoLevel:  rotator,
			logrus.WarnLevel:  rotator,
			logrus.ErrorLevel: rotator,
			logrus.FatalLevel: rotator,
		}

		Log.Hooks.Add(lfshook.NewHook(pathmap, &logrus.JSONFormatter{
			DisableHTMLEscape: true,
		}))
	}

	stderr_map := lfshook.WriterMap{
		logrus.ErrorLevel: os.Stderr,
		logrus.FatalLevel: os.Stderr,
	}

	if !SuppressLogging {
		stderr_map[logrus.InfoLevel] = os.Stderr
		stderr_map[logrus.WarnLevel] = os.Stderr
	}

	if config_obj.GetVerbose() {
		stderr_map[logrus.DebugLevel] = os.Stderr
	}

	Log.Hooks.Add(lfshook.NewHook(stderr_map, &Formatter{stderr_map}))
	return &LogContext{Log}, nil
}

// The log file is rotated weekly and expired yearly.
func getRotator(base_path string) (*rotatelogs.RotateLogs, error) {
	return rotatelogs.New(
		base_path+".%Y%m%d",
		rotatelogs.WithLinkName(base_path),
		rotatelogs.WithMaxAge(365*24*time.Hour),
		rotatelogs.WithRotationTime(7*24*time.Hour),
	)
}

// Formatter renders entries for the console. Rendering happens in
// the formatter itself so color markup can be interpreted, therefore
// Format() returns no bytes for levels it already printed.
type Formatter struct {
	stderr_map lfshook.WriterMap
}

func (self *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	levelText := entry.Level.String()
	fmt.Fprintf(b, "%s: %s", levelText,
		strings.TrimRight(entry.Message, "\r\n"))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
		}
	}

	// Only print the result to the console if there is an stderr
	// map for this level.
	_, pres := self.stderr_map[entry.Level]
	if pres {
		if NoColor {
			return []byte(clearTag(b.String()) + "\n"), nil
		}
		color.Fprintln(os.Stderr, normalize(b.String()))
	}

	return nil, nil
}

// Unbalanced color tags confuse the renderer, so balance them before
// printing.
func normalize(line string) string {
	opening_matches := tag_regex.FindAllString(line, -1)
	closing_matches := closing_tag_regex.FindAllString(line, -1)

	if len(opening_matches) > len(closing_matches) {
		for i := 0; i < len(opening_matches)-len(closing_matches); i++ {
			line += "</>"
		}
	} else if len(opening_matches) < len(closing_matches) {
		line = closing_tag_regex.ReplaceAllString(line, "")
	}

	return line
}

func clearTag(message string) string {
	message = tag_regex.ReplaceAllString(message, "")
	return closing_tag_regex.ReplaceAllString(message, "")
}

func GetLogger(config_obj Config, component *string) *LogContext {
	manager_mu.Lock()
	if Manager == nil {
		Manager = NewLogManager()
	}
	manager := Manager
	manager_mu.Unlock()

	return manager.GetLogger(config_obj, component)
}

// Reset drops all cached loggers. The next GetLogger call rebuilds
// them from the current configuration.
func Reset() {
	manager_mu.Lock()
	defer manager_mu.Unlock()

	if Manager != nil {
		Manager.Reset()
	}
}

// InitLogging builds loggers for all components so errors in the
// logging configuration surface immediately at startup.
func InitLogging(config_obj Config) error {
	if config_obj == nil {
		config_obj = emptyConfig{}
	}

	if config_obj.GetNocolor() {
		NoColor = true
	}

	manager := NewLogManager()
	for _, component := range []*string{
		&GenericComponent, &ToolComponent, &RestoreComponent} {
		ctx, err := manager.makeNewComponent(config_obj, component)
		if err != nil {
			return err
		}
		manager.contexts[component] = ctx
	}

	manager_mu.Lock()
	Manager = manager
	manager_mu.Unlock()

	FlushPrelogs(config_obj)
	return nil
}

// Prelog queues a message before the logging system is configured.
func Prelog(format string, v ...interface{}) {
	prelog_mu.Lock()
	defer prelog_mu.Unlock()

	prelogs = append(prelogs, fmt.Sprintf(format, v...))
}

// FlushPrelogs dumps all the queued messages into the correct log
// destination.
func FlushPrelogs(config_obj Config) {
	logger := GetLogger(config_obj, &GenericComponent)

	prelog_mu.Lock()
	queued := prelogs
	prelogs = nil
	prelog_mu.Unlock()

	for _, message := range queued {
		logger.Debug("%s", message)
	}
}
