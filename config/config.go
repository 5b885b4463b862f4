package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	WakeWord  WakeWordConfig  `yaml:"wake_word"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	SD        SDConfig        `yaml:"stable_diffusion"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Paths     PathsConfig     `yaml:"paths"`
	Sounds    SoundsConfig    `yaml:"sounds"`
	Assistant AssistantConfig `yaml:"assistant"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
	Log       LogConfig       `yaml:"log"`
}

type AudioConfig struct {
	SampleRate      int    `yaml:"sample_rate"`
	PhraseTimeLimit string `yaml:"phrase_time_limit"`
}

type WakeWordConfig struct {
	AccessKey string   `yaml:"access_key"`
	Keywords  []string `yaml:"keywords"`
}

type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	AssistantID string `yaml:"assistant_id"`
	Language    string `yaml:"language"`
	ImageModel  string `yaml:"image_model"`
	TTSEnabled  *bool  `yaml:"tts_enabled"`
	TTSVoice    string `yaml:"tts_voice"`
}

type SDConfig struct {
	Host      string   `yaml:"host"`
	Port      int      `yaml:"port"`
	Steps     int      `yaml:"steps"`
	Styles    []string `yaml:"styles"`
	AltStyles []string `yaml:"alt_styles"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type PathsConfig struct {
	SavedImages    string `yaml:"saved_images"`
	ListeningImage string `yaml:"listening_image"`
	ThinkingImage  string `yaml:"thinking_image"`
	LastResult     string `yaml:"last_result"`
	FullImage      string `yaml:"full_image"`
	ThreadFile     string `yaml:"thread_file"`
}

type SoundsConfig struct {
	Wake     []string `yaml:"wake"`
	Ack      []string `yaml:"ack"`
	Sending  string   `yaml:"sending"`
	Thinking string   `yaml:"thinking"`
}

type AssistantConfig struct {
	PollInterval string `yaml:"poll_interval"`
	Deadline     string `yaml:"deadline"`
}

type ShutdownConfig struct {
	JoinTimeout string `yaml:"join_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Validate checks the settings without which the assistant cannot start.
// Missing keys here are fatal; everything else degrades at runtime.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is not configured")
	}
	if c.OpenAI.AssistantID == "" {
		return fmt.Errorf("openai.assistant_id is not configured")
	}
	if c.WakeWord.AccessKey == "" {
		return fmt.Errorf("wake_word.access_key is not configured")
	}
	for name, value := range map[string]string{
		"audio.phrase_time_limit": c.Audio.PhraseTimeLimit,
		"assistant.poll_interval": c.Assistant.PollInterval,
		"assistant.deadline":      c.Assistant.Deadline,
		"shutdown.join_timeout":   c.Shutdown.JoinTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.PhraseTimeLimit == "" {
		c.Audio.PhraseTimeLimit = "10s"
	}
	if len(c.WakeWord.Keywords) == 0 {
		c.WakeWord.Keywords = []string{"porcupine"}
	}
	if c.OpenAI.ImageModel == "" {
		c.OpenAI.ImageModel = "dall-e-3"
	}
	if c.OpenAI.TTSEnabled == nil {
		enabled := true
		c.OpenAI.TTSEnabled = &enabled
	}
	if c.OpenAI.TTSVoice == "" {
		c.OpenAI.TTSVoice = "nova"
	}
	if c.SD.Steps < 1 || c.SD.Steps > 100 {
		c.SD.Steps = 8
	}
	if len(c.SD.Styles) == 0 {
		c.SD.Styles = []string{"lcmxl"}
	}
	if len(c.SD.AltStyles) == 0 {
		c.SD.AltStyles = []string{"anime"}
	}
	if c.Paths.SavedImages == "" {
		c.Paths.SavedImages = "saved_images"
	}
	if c.Paths.ListeningImage == "" {
		c.Paths.ListeningImage = "assistant_images/listening.png"
	}
	if c.Paths.ThinkingImage == "" {
		c.Paths.ThinkingImage = "assistant_images/thinking.png"
	}
	if c.Paths.LastResult == "" {
		c.Paths.LastResult = "resized.png"
	}
	if c.Paths.FullImage == "" {
		c.Paths.FullImage = "dalle_image.png"
	}
	if c.Paths.ThreadFile == "" {
		c.Paths.ThreadFile = "assistant_thread.txt"
	}
	if len(c.Sounds.Wake) == 0 {
		c.Sounds.Wake = []string{"audio/what.mp3", "audio/yes_question.mp3"}
	}
	if len(c.Sounds.Ack) == 0 {
		c.Sounds.Ack = []string{"audio/oh_ok.mp3", "audio/alright_then.mp3"}
	}
	if c.Sounds.Sending == "" {
		c.Sounds.Sending = "audio/sending_image.mp3"
	}
	if c.Sounds.Thinking == "" {
		c.Sounds.Thinking = "audio/hmm.mp3"
	}
	if c.Assistant.PollInterval == "" {
		c.Assistant.PollInterval = "1s"
	}
	if c.Assistant.Deadline == "" {
		c.Assistant.Deadline = "10s"
	}
	if c.Shutdown.JoinTimeout == "" {
		c.Shutdown.JoinTimeout = "10s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) PhraseTimeLimit() time.Duration {
	return mustDuration(c.Audio.PhraseTimeLimit, 10*time.Second)
}

func (c *Config) PollInterval() time.Duration {
	return mustDuration(c.Assistant.PollInterval, time.Second)
}

func (c *Config) PollDeadline() time.Duration {
	return mustDuration(c.Assistant.Deadline, 10*time.Second)
}

func (c *Config) JoinTimeout() time.Duration {
	return mustDuration(c.Shutdown.JoinTimeout, 10*time.Second)
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
