package config

import (
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Smtp     SmtpConfig   `yaml:"smtp" json:"smtp"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "NerdStationery",
		Location: "Asia/Jakarta",
		Workdir:  "/var/nerdstationery",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1989,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "nerdstationery",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/nerdstationery/nerdstationery.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToInt64E(evalue)
	if err == nil {
		f(p)
	}
}

// LoadConfig loads the YAML configuration file and applies
// NERDSTATIONERY_* environment overrides on top of it. A missing or
// unreadable file yields the built-in defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("NERDSTATIONERY_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("NERDSTATIONERY_SYSTEM_LOCATION", func(v string) { cfg.System.Location = v })
	setEnvValue("NERDSTATIONERY_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = v == "true" })

	setEnvValue("NERDSTATIONERY_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvInt64Value("NERDSTATIONERY_WEB_PORT", func(v int64) { cfg.Web.Port = int(v) })

	setEnvValue("NERDSTATIONERY_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("NERDSTATIONERY_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvInt64Value("NERDSTATIONERY_DB_PORT", func(v int64) { cfg.Database.Port = int(v) })
	setEnvValue("NERDSTATIONERY_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("NERDSTATIONERY_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("NERDSTATIONERY_DB_PWD", func(v string) { cfg.Database.Passwd = v })

	setEnvValue("NERDSTATIONERY_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvInt64Value("NERDSTATIONERY_SMTP_PORT", func(v int64) { cfg.Smtp.Port = int(v) })
	setEnvValue("NERDSTATIONERY_SMTP_USERNAME", func(v string) { cfg.Smtp.Username = v })
	setEnvValue("NERDSTATIONERY_SMTP_PASSWORD", func(v string) { cfg.Smtp.Password = v })
	setEnvValue("NERDSTATIONERY_SMTP_FROM", func(v string) { cfg.Smtp.From = v })

	setEnvValue("NERDSTATIONERY_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })

	return cfg
}
