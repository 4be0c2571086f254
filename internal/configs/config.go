package configs

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type ConfigString string
type ConfigBool bool
type ConfigInt int
type ConfigFloat float64

// ConfigSecret never prints its value.
type ConfigSecret string

func (c ConfigSecret) String() string {
	if c == `` {
		return ``
	}
	return `*****`
}

const (
	DefaultOpenAIEndpoint = `https://api.openai.com/v1/`
	DefaultOpenAIModel    = `gpt-3.5-turbo`
)

type Config struct {
	PreambleMessageType ConfigString `yaml:"preamble-message-type"` // "system" or "user"
	OpenAIKey           ConfigSecret `yaml:"openai-key" env:"NPCTALK_OPENAI_KEY"`
	OpenAIEndpoint      ConfigString `yaml:"openai-endpoint" env:"NPCTALK_OPENAI_ENDPOINT"`
	OpenAIModel         ConfigString `yaml:"openai-model" env:"NPCTALK_OPENAI_MODEL"`
	LogConversations    ConfigBool   `yaml:"log-conversations"`

	ConversationTimeoutSecs ConfigInt   `yaml:"conversation-timeout-secs"` // Idle seconds before a session expires
	ConversationRadius      ConfigFloat `yaml:"conversation-radius"`       // Max distance before a session ends
	SweepIntervalSecs       ConfigInt   `yaml:"sweep-interval-secs"`       // How often the expiry sweep runs

	MonitorAddress ConfigString `yaml:"monitor-address"` // Optional websocket monitor listen address
	LogFile        ConfigString `yaml:"log-file"`        // Optional rotating log file

	validated bool
}

func (c *Config) Validate() {

	if c.PreambleMessageType != `user` {
		c.PreambleMessageType = `system`
	}

	if c.OpenAIEndpoint == `` {
		c.OpenAIEndpoint = DefaultOpenAIEndpoint
	}

	if c.OpenAIModel == `` {
		c.OpenAIModel = DefaultOpenAIModel
	}

	if c.ConversationTimeoutSecs < 1 {
		c.ConversationTimeoutSecs = 120
	}

	if c.ConversationRadius <= 0 {
		c.ConversationRadius = 20
	}

	if c.SweepIntervalSecs < 1 {
		c.SweepIntervalSecs = 5
	}

	c.validated = true
}

// applyEnvOverrides lets deployment environments supply credentials without
// writing them into the yaml file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(`NPCTALK_OPENAI_KEY`); v != `` {
		c.OpenAIKey = ConfigSecret(v)
	}
	if v := os.Getenv(`NPCTALK_OPENAI_ENDPOINT`); v != `` {
		c.OpenAIEndpoint = ConfigString(v)
	}
	if v := os.Getenv(`NPCTALK_OPENAI_MODEL`); v != `` {
		c.OpenAIModel = ConfigString(v)
	}
}

var (
	configDataLock sync.RWMutex
	configData     Config
)

// LoadConfig reads a yaml config file, applies env overrides and defaults,
// and installs the result as the active config.
func LoadConfig(path string) (Config, error) {

	var loaded Config

	bytes, err := os.ReadFile(path)
	if err != nil {
		return loaded, errors.Wrap(err, `filepath: `+path)
	}

	if err := yaml.Unmarshal(bytes, &loaded); err != nil {
		return loaded, errors.Wrap(err, `filepath: `+path)
	}

	loaded.applyEnvOverrides()
	loaded.Validate()

	SetConfig(loaded)

	return loaded, nil
}

// DefaultConfig returns a validated config without reading any file.
func DefaultConfig() Config {
	c := Config{}
	c.applyEnvOverrides()
	c.Validate()
	return c
}

func GetConfig() Config {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	c := configData
	if !c.validated {
		c.Validate()
	}
	return c
}

func SetConfig(c Config) {
	configDataLock.Lock()
	defer configDataLock.Unlock()

	if !c.validated {
		c.Validate()
	}
	configData = c
}
