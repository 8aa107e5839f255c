package config

// Config is the top-level configuration for AutoPR.
type Config struct {
	Product   ProductConfig   `yaml:"product"`
	GitHub    GitHubConfig    `yaml:"github"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Quota     QuotaConfig     `yaml:"quota"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

// ProductConfig holds the user-visible identity of the agent.
type ProductConfig struct {
	Name  string `yaml:"name"`  // shown in comments and the bootstrap README
	URL   string `yaml:"url"`   // linked from generated content
	Label string `yaml:"label"` // issue label that triggers a run
}

// GitHubConfig holds GitHub App credentials and API settings.
type GitHubConfig struct {
	AppID         int64  `yaml:"app_id"`
	PrivateKey    string `yaml:"private_key"` // PEM, usually ${GITHUB_PRIVATE_KEY}
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`  // empty for api.github.com
	BotLogin      string `yaml:"bot_login"` // e.g. "autopr[bot]", filtered out of issue context
	BaseBranch    string `yaml:"base_branch"`
}

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig holds record store settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// QuotaConfig holds per-installation request limits.
type QuotaConfig struct {
	RequestsPerCycle int `yaml:"requests_per_cycle"`
}

// WorkspaceConfig holds the scratch directory used by the
// empty-repository bootstrap.
type WorkspaceConfig struct {
	Dir string `yaml:"dir"`
}
