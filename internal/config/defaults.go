package config

const (
	defaultLogDir            = "logs"
	defaultToolCommand       = "uv"
	defaultRemotePort        = 22
	defaultRemoteDir         = "~/ai-news-agent"
	defaultRemoteService     = "ai-news-agent"
	defaultDepsCommand       = "uv sync"
	defaultKnownHosts        = "~/.ssh/known_hosts"
	defaultConnectTimeout    = 15
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 0
	projectMarkerFile        = "pyproject.toml"
	restartCommandPrefix     = "sudo systemctl restart "
	maxTCPPort               = 65535
	defaultConfigPathDisplay = "~/.config/newsctl/config.toml"
)

var defaultToolArgs = []string{"run", "news"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Tool: Tool{
			Command: defaultToolCommand,
		},
		Remote: Remote{
			Port:           defaultRemotePort,
			Dir:            defaultRemoteDir,
			Service:        defaultRemoteService,
			DepsCommand:    defaultDepsCommand,
			KnownHosts:     defaultKnownHosts,
			StrictHostKey:  true,
			ConnectTimeout: defaultConnectTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
