package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/otpauth/internal/flagx"
	"github.com/dmitrijs2005/otpauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "180s" and integer nanoseconds are accepted.
// Absent fields keep the value already in Config.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC string          `json:"endpoint_addr_grpc"`
	DatabaseDSN      string          `json:"database_dsn"`
	DatabaseMaxConns int             `json:"database_max_conns"`
	OtpStore         string          `json:"otp_store"`
	RedisAddr        string          `json:"redis_addr"`
	RedisPassword    string          `json:"redis_password"`
	RedisDB          *int            `json:"redis_db"`
	OtpTTL           *timex.Duration `json:"otp_ttl"`
	TokenTTL         *timex.Duration `json:"token_ttl"`
	NotifierKind     string          `json:"notifier"`
	BrevoAPIKey      string          `json:"brevo_api_key"`
	BrevoTemplateID  int64           `json:"brevo_template_id"`
	SenderEmail      string          `json:"sender_email"`
	SenderName       string          `json:"sender_name"`
	SiteName         string          `json:"site_name"`
	SMTPHost         string          `json:"smtp_host"`
	SMTPPort         int             `json:"smtp_port"`
	SMTPUser         string          `json:"smtp_user"`
	SMTPPassword     string          `json:"smtp_password"`
	NotifyTimeout    *timex.Duration `json:"notify_timeout"`
	StoreRetries     *int            `json:"store_retries"`
	CORSAllowOrigins []string        `json:"cors_allow_origins"`
	LogLevel         string          `json:"log_level"`
}

// parseJson loads values from the file named by -c/-config into config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics, as this only runs at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.DatabaseMaxConns, c.DatabaseMaxConns)
	setString(&config.OtpStore, c.OtpStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.OtpTTL != nil {
		config.OtpTTL = c.OtpTTL.Duration
	}
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	setString(&config.NotifierKind, c.NotifierKind)
	setString(&config.BrevoAPIKey, c.BrevoAPIKey)
	if c.BrevoTemplateID != 0 {
		config.BrevoTemplateID = c.BrevoTemplateID
	}
	setString(&config.SenderEmail, c.SenderEmail)
	setString(&config.SenderName, c.SenderName)
	setString(&config.SiteName, c.SiteName)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	if c.NotifyTimeout != nil {
		config.NotifyTimeout = c.NotifyTimeout.Duration
	}
	if c.StoreRetries != nil {
		config.StoreRetries = *c.StoreRetries
	}
	if len(c.CORSAllowOrigins) > 0 {
		config.CORSAllowOrigins = c.CORSAllowOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
}
