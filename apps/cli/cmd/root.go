package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
	"github.com/canterburyairpatrol/smm-asset/packages/core/config"
	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
	"github.com/canterburyairpatrol/smm-asset/packages/logger"
	"github.com/canterburyairpatrol/smm-asset/packages/output"
	"github.com/canterburyairpatrol/smm-asset/packages/session"
	"github.com/canterburyairpatrol/smm-asset/packages/stats"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag       string
	hostFlag         string
	userFlag         string
	passwordFlag     string
	timeoutFlag      string
	proxyFlag        string
	insecureFlag     bool
	validateSSLFlag  bool
	formEncodingFlag bool
	logLevelFlag     string
	logFormatFlag    string
	noColorFlag      bool
	verboseFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "smm-asset",
	Short: "Report asset positions to a Search Management Map server",
	Long: `smm-asset logs in to a Search Management Map server as an asset
operator, reports positions and relays the commands the server sends back.

Settings come from .smm-asset.yaml, SMM_* environment variables and flags,
in increasing order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		output.NewConsoleFormatter(output.WithWriter(os.Stderr), output.WithNoColor(noColorFlag)).FormatError(err)
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", getEnvString("SMM_CONFIG", ""), "Path to config file (env: SMM_CONFIG)")
	pf.StringVarP(&hostFlag, "host", "H", getEnvString("SMM_HOST", ""), "Server base URL, e.g. https://smm.example.com (env: SMM_HOST)")
	pf.StringVarP(&userFlag, "user", "u", getEnvString("SMM_USER", ""), "Username (env: SMM_USER)")
	pf.StringVarP(&passwordFlag, "password", "p", getEnvString("SMM_PASSWORD", ""), "Password (env: SMM_PASSWORD)")
	pf.StringVar(&timeoutFlag, "timeout", getEnvString("SMM_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: SMM_TIMEOUT)")
	pf.StringVar(&proxyFlag, "proxy", getEnvString("SMM_PROXY", ""), "Proxy URL for HTTP requests (env: SMM_PROXY)")
	pf.BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	pf.BoolVar(&validateSSLFlag, "validate-ssl", getEnvBool("SMM_VALIDATE_SSL", false), "Verify server certificates (env: SMM_VALIDATE_SSL)")
	pf.BoolVar(&formEncodingFlag, "form-encoding", getEnvBool("SMM_FORM_ENCODING", false), "URL-encode credentials in the login form (env: SMM_FORM_ENCODING)")
	pf.StringVar(&logLevelFlag, "log-level", getEnvString("SMM_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: SMM_LOG_LEVEL)")
	pf.StringVar(&logFormatFlag, "log-format", getEnvString("SMM_LOG_FORMAT", ""), "Log format: text, json (env: SMM_LOG_FORMAT)")
	pf.BoolVar(&noColorFlag, "no-color", getEnvBool("SMM_NO_COLOR", false), "Disable colored output (env: SMM_NO_COLOR)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(versionCmd)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// flagConfig collects the settings given on the command line or through
// the environment. Unset values leave the file config alone.
func flagConfig() *config.Config {
	cfg := &config.Config{
		Host:      hostFlag,
		Username:  userFlag,
		Password:  passwordFlag,
		Timeout:   timeoutFlag,
		Proxy:     proxyFlag,
		LogLevel:  logLevelFlag,
		LogFormat: logFormatFlag,
	}
	cfg.ValidateSSL = explicitBool("validate-ssl", "SMM_VALIDATE_SSL", validateSSLFlag)
	if insecureFlag {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	cfg.FormEncoding = explicitBool("form-encoding", "SMM_FORM_ENCODING", formEncodingFlag)
	cfg.NoColor = explicitBool("no-color", "SMM_NO_COLOR", noColorFlag)
	return cfg
}

// explicitBool returns value when the flag was given or its environment
// variable is set, so that false can override a true in the config file.
func explicitBool(flag, envKey string, value bool) *bool {
	if rootCmd.PersistentFlags().Changed(flag) || os.Getenv(envKey) != "" {
		return config.BoolPtr(value)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("load config: %w", err))
	}
	cfg := config.DefaultConfig().Merge(fileConfig).Merge(flagConfig())
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return cfg, nil
}

// client bundles what every server command needs.
type client struct {
	cfg   *config.Config
	sess  *session.Session
	stats *stats.Recorder
	out   *output.ConsoleFormatter
	log   *slog.Logger
}

func (c *client) Close() {
	_ = c.sess.Close()
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	log, err := logger.New(os.Stderr, level, cfg.LogFormat)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return log, nil
}

func clientOptions(cfg *config.Config) ([]smmhttp.ClientOption, error) {
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	opts := []smmhttp.ClientOption{
		smmhttp.WithTimeout(timeout),
		smmhttp.WithValidateSSL(cfg.GetValidateSSL()),
		smmhttp.WithUserAgent("smm-asset/" + version),
	}
	if cfg.Proxy != "" {
		opts = append(opts, smmhttp.WithProxy(cfg.Proxy))
	}
	return opts, nil
}

// connect loads settings and logs in. The session is closed again when
// login does not reach StateConnected.
func connect(cmd *cobra.Command) (*client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	clientOpts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	recorder := stats.NewRecorder()
	opts := []session.Option{
		session.WithLogger(log),
		session.WithClientOptions(clientOpts...),
		session.WithObserver(recorder),
		session.WithHostValidation(),
	}
	if cfg.GetFormEncoding() {
		opts = append(opts, session.WithFormEncoding())
	}

	c := &client{
		cfg:   cfg,
		sess:  session.Connect(cfg.Host, cfg.Username, cfg.Password, opts...),
		stats: recorder,
		out: output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithNoColor(cfg.GetNoColor()),
			output.WithVerbose(verboseFlag),
		),
		log: log,
	}
	if state := c.sess.State(); state != session.StateConnected {
		c.Close()
		return nil, stateError(cfg.Host, state)
	}
	return c, nil
}

// asset resolves the asset named by args[0], or by the config file when
// no argument was given.
func (c *client) asset(args []string) (*asset.Asset, error) {
	name := c.cfg.Asset
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("no asset given"))
	}

	assets, err := asset.GetAssets(c.sess)
	if err != nil {
		return nil, err
	}
	a := asset.Find(assets, name)
	if a == nil {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("asset %q not found for user %s", name, c.sess.Username()))
	}
	return a, nil
}
