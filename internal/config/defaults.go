package config

const (
	defaultHubBinary    = "hf"
	defaultHubRepoType  = "model"
	defaultStateDir     = "~/.local/share/facehugger"
	defaultHistoryFile  = "history.db"
	defaultLogFormat    = "plain"
	defaultLogLevel     = "info"
	defaultManifestPath = "facehugger.yaml"
)

// DefaultManifestPath is the manifest used when none is given on the command line.
const DefaultManifestPath = defaultManifestPath

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Hub: Hub{
			Binary:   defaultHubBinary,
			RepoType: defaultHubRepoType,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
