package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Input sources understood by the device and simulator binaries.
const (
	InputEvdev    = "evdev"
	InputTerminal = "terminal"
	InputNone     = "none"
)

// Config captures runtime configuration for either binary.
type Config struct {
	Apps    Apps
	Device  Device
	Runtime Runtime
	Logging Logging
	Server  Server
	Flags   map[string]string
	Args    []string
}

// Apps selects where app manifests come from. An empty Dir means the
// embedded defaults.
type Apps struct {
	Dir        string
	Standalone string
	PrefsPath  string
}

type Device struct {
	Framebuffer  string
	Input        string
	KeyboardGlob string
}

type Runtime struct {
	Tick     time.Duration
	FailFast bool
}

type Logging struct {
	FilePath string
	Debug    bool
	Trace    bool
	StdioLog string
}

// Server configures the dev control API. An empty ListenAddr disables it.
type Server struct {
	ListenAddr string
	DevMode    bool
}

// Defaults holds the per-binary starting values that flags and environment
// override.
type Defaults struct {
	Name       string
	Input      string
	ListenAddr string
	LogFile    string
}

const (
	envAppsDir     = "CARDKIT_APPS_DIR"
	envStandalone  = "CARDKIT_APP"
	envPrefs       = "CARDKIT_PREFS"
	envFramebuffer = "CARDKIT_FB"
	envInput       = "CARDKIT_INPUT"
	envKeyboard    = "CARDKIT_KEYBOARD"
	envTick        = "CARDKIT_TICK"
	envFailFast    = "CARDKIT_FAIL_FAST"
	envLogFile     = "CARDKIT_LOG_FILE"
	envDebug       = "CARDKIT_DEBUG"
	envTrace       = "CARDKIT_TRACE"
	envStdioLog    = "CARDKIT_STDIO_LOG"
	envListen      = "CARDKIT_LISTEN"
	envDevMode     = "CARDKIT_DEV"
)

const (
	DefaultFramebuffer = "/dev/fb0"
	DefaultPrefsPath   = "cardkit-prefs.db"
	DefaultTick        = 10 * time.Millisecond
)

// Load parses configuration from CLI arguments and environment variables.
func Load(d Defaults) (Config, error) {
	return LoadArgs(d, os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(d Defaults, args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	name := d.Name
	if name == "" {
		name = "cardkit"
	}
	input := d.Input
	if input == "" {
		input = InputEvdev
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	appsDir := fs.String("apps", envOrDefault(env, envAppsDir, ""), "directory of app manifests (empty uses the embedded set)")
	standalone := fs.String("app", envOrDefault(env, envStandalone, ""), "run a single app path without the launcher")
	prefsPath := fs.String("prefs", envOrDefault(env, envPrefs, DefaultPrefsPath), "path to the preferences database (empty disables persistence)")
	fb := fs.String("fb", envOrDefault(env, envFramebuffer, DefaultFramebuffer), "framebuffer device")
	inputSrc := fs.String("input", envOrDefault(env, envInput, input), "key input source: evdev, terminal or none")
	kbd := fs.String("keyboard", envOrDefault(env, envKeyboard, ""), "glob of evdev keyboard devices")
	tick := fs.Duration("tick", envOrDuration(env, envTick, DefaultTick), "event loop tick interval")
	failFast := fs.Bool("fail-fast", envOrBool(env, envFailFast, false), "stop the loop on the first handler panic")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, d.LogFile), "path to the debug log file")
	debug := fs.Bool("debug", envOrBool(env, envDebug, false), "enable debug logging")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	stdioLog := fs.String("stdio-log", envOrDefault(env, envStdioLog, ""), "redirect stdout+stderr (including panics) to this file")
	listen := fs.String("listen", envOrDefault(env, envListen, d.ListenAddr), "dev API listen address (empty disables it)")
	dev := fs.Bool("dev", envOrBool(env, envDevMode, false), "enable permissive CORS on the dev API")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Apps: Apps{
			Dir:        *appsDir,
			Standalone: *standalone,
			PrefsPath:  *prefsPath,
		},
		Device: Device{
			Framebuffer:  *fb,
			Input:        strings.ToLower(strings.TrimSpace(*inputSrc)),
			KeyboardGlob: *kbd,
		},
		Runtime: Runtime{
			Tick:     *tick,
			FailFast: *failFast,
		},
		Logging: Logging{
			FilePath: *logFile,
			Debug:    *debug,
			Trace:    *trace,
			StdioLog: *stdioLog,
		},
		Server: Server{
			ListenAddr: *listen,
			DevMode:    *dev,
		},
		Flags: map[string]string{
			"apps":     *appsDir,
			"app":      *standalone,
			"prefs":    *prefsPath,
			"fb":       *fb,
			"input":    *inputSrc,
			"keyboard": *kbd,
			"tick":     tick.String(),
			"failFast": strconv.FormatBool(*failFast),
			"logFile":  *logFile,
			"debug":    strconv.FormatBool(*debug),
			"trace":    strconv.FormatBool(*trace),
			"stdioLog": *stdioLog,
			"listen":   *listen,
			"dev":      strconv.FormatBool(*dev),
		},
		Args: append([]string(nil), args...),
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// envOrDuration accepts Go durations ("25ms") or a bare number of
// milliseconds.
func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return fallback
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad(d Defaults) Config {
	cfg, err := Load(d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects values the runtime cannot honour.
func Validate(cfg Config) error {
	if cfg.Runtime.Tick < 0 {
		return fmt.Errorf("tick must be >= 0 (got %s)", cfg.Runtime.Tick)
	}
	switch cfg.Device.Input {
	case InputEvdev, InputTerminal, InputNone:
	default:
		return fmt.Errorf("unknown input source %q (want %s, %s or %s)", cfg.Device.Input, InputEvdev, InputTerminal, InputNone)
	}
	return nil
}
