package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string

		SecretKey   []byte
		AdminSecret string // shared secret gating admin signup/login

		FrontendBaseURL           string
		DefaultFromEmailAddr      string
		PasswordResetTimeoutDelta time.Duration

		SendgridApiKey string
		RollbarToken   string

		Server     ServerConfig
		Database   DatabaseConfig
		Cloudinary CloudinaryConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		DebugHost          string
		AllowedOrigins     []string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	CloudinaryConfig struct {
		Name          string
		Key           string
		Secret        string
		Folder        string
		UploadTimeout time.Duration
		MaxFileSize   int64 // bytes
	}
)

func (c ServerConfig) Address() string   { return c.Host + ":" + c.Port }
func (c DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmailAddr}
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and `ADAPT_`-prefixed environment variables.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "aDApt")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "=wb)3m0h&!9%p^c$5y#@+x8_e7(ad4pt)")
	v.SetDefault("adminSecret", "")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5001")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "adapt")
	v.SetDefault("database.user", "adapt")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("cloudinary.name", "")
	v.SetDefault("cloudinary.key", "")
	v.SetDefault("cloudinary.secret", "")
	v.SetDefault("cloudinary.folder", "aDApt")
	v.SetDefault("cloudinary.uploadTimeout", 30*time.Second)
	v.SetDefault("cloudinary.maxFileSize", 500*1024)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "PROD":
		v.SetDefault("debug", false)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix("ADAPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		Build:    v.GetString("build"),
		AppName:  v.GetString("appName"),

		SecretKey:   []byte(v.GetString("secretKey")),
		AdminSecret: v.GetString("adminSecret"),

		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DefaultFromEmailAddr:      v.GetString("defaultFromEmail"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetString("server.port"),
			DebugHost:          v.GetString("server.debugHost"),
			AllowedOrigins:     v.GetStringSlice("server.allowedOrigins"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Cloudinary: CloudinaryConfig{
			Name:          v.GetString("cloudinary.name"),
			Key:           v.GetString("cloudinary.key"),
			Secret:        v.GetString("cloudinary.secret"),
			Folder:        v.GetString("cloudinary.folder"),
			UploadTimeout: v.GetDuration("cloudinary.uploadTimeout"),
			MaxFileSize:   v.GetInt64("cloudinary.maxFileSize"),
		},
	}

	if !conf.Debug {
		if err := conf.validate(); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	return conf
}

// validate ensures settings that have no safe default are present.
// Only enforced outside of debug mode.
func (c *Config) validate() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(string(c.SecretKey), "secretKey"),
		vala.StringNotEmpty(c.AdminSecret, "adminSecret"),
		vala.StringNotEmpty(c.Database.Password, "database.password"),
		vala.StringNotEmpty(c.Cloudinary.Name, "cloudinary.name"),
		vala.StringNotEmpty(c.Cloudinary.Key, "cloudinary.key"),
		vala.StringNotEmpty(c.Cloudinary.Secret, "cloudinary.secret"),
		vala.Not(vala.Equals(fmt.Sprint(c.Server.JWTExpirationDelta), "0s", "server.jwtExpirationDelta")),
	).Check()
}
