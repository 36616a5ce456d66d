package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir     string `yaml:"data_dir"`
		MetricsPort int    `yaml:"metrics_port"`
	} `yaml:"app"`

	Store struct {
		Driver string `yaml:"driver"` // sqlite | postgres
		Path   string `yaml:"path"`   // sqlite file, relative to data_dir
		DSN    string `yaml:"dsn"`    // postgres connection string
	} `yaml:"store"`

	Search struct {
		Endpoint    string `yaml:"endpoint"`
		TargetSite  string `yaml:"target_site"`
		JobPath     string `yaml:"job_path"`
		CompanyPath string `yaml:"company_path"`
		Limit       int    `yaml:"limit"`
	} `yaml:"search"`

	Contacts struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"contacts"`

	Scrape struct {
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		Burst          int     `yaml:"burst"`
	} `yaml:"scrape"`

	Email struct {
		Endpoint  string `yaml:"endpoint"`
		From      string `yaml:"from"`
		Template  string `yaml:"template"`
		Timezone  string `yaml:"timezone"`
		StartHour int    `yaml:"start_hour"`
		EndHour   int    `yaml:"end_hour"`
	} `yaml:"email"`

	Dispatch struct {
		Schedule   string `yaml:"schedule"` // cron spec, e.g. "@every 5m"
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"dispatch"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every zero-valued knob so a partial (or empty) config
// file still yields a runnable engine.
func (c *Config) ApplyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Path == "" {
		c.Store.Path = "founderflow.db"
	}
	if c.Search.Endpoint == "" {
		c.Search.Endpoint = "https://serpapi.com/search"
	}
	if c.Search.TargetSite == "" {
		c.Search.TargetSite = "workatastartup.com"
	}
	if c.Search.JobPath == "" {
		c.Search.JobPath = "workatastartup.com/jobs/"
	}
	if c.Search.CompanyPath == "" {
		c.Search.CompanyPath = "workatastartup.com/companies/"
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 10
	}
	if c.Contacts.Endpoint == "" {
		c.Contacts.Endpoint = "https://api.apollo.io/api/v1/people/match"
	}
	if c.Scrape.RequestsPerSec <= 0 {
		c.Scrape.RequestsPerSec = 1.0
	}
	if c.Scrape.Burst <= 0 {
		c.Scrape.Burst = 2
	}
	if c.Email.Endpoint == "" {
		c.Email.Endpoint = "https://api.resend.com/emails"
	}
	if c.Email.From == "" {
		c.Email.From = "onboarding@resend.dev"
	}
	if c.Email.Template == "" {
		c.Email.Template = "Default Template"
	}
	if c.Email.Timezone == "" {
		c.Email.Timezone = "America/Los_Angeles"
	}
	if c.Email.StartHour == 0 {
		c.Email.StartHour = 9
	}
	if c.Email.EndHour == 0 {
		c.Email.EndHour = 13
	}
	if c.Dispatch.Schedule == "" {
		c.Dispatch.Schedule = "@every 5m"
	}
	if c.Dispatch.MaxRetries == 0 {
		c.Dispatch.MaxRetries = 3
	}
}
