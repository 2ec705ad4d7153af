package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type TokenConfig struct {
	VerificationExpiresHours int `mapstructure:"verification_expires_hours"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
	RefreshExpDays   int    `mapstructure:"refresh_exp_days"`
}

type AuthConfig struct {
	Password PasswordConfig `mapstructure:"password"`
	Token    TokenConfig    `mapstructure:"token"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LicensingConfig holds credentials for the external license API. The
// store name doubles as the "application" parameter of the WhatsApp
// verification endpoint.
type LicensingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Store     string `mapstructure:"store"`
	PortalURL string `mapstructure:"portal_url"`
}

type WhatsAppConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Keycode string `mapstructure:"keycode"`
	Token   string `mapstructure:"token"`
}

type MercadoPagoConfig struct {
	AccessToken    string `mapstructure:"access_token"`
	Sandbox        bool   `mapstructure:"sandbox"`
	TestBuyerEmail string `mapstructure:"test_buyer_email"`
}

// WebhookConfig tunes the payment webhook reconciler. FallbackPlanID is
// the plan assumed for legacy payment references that carry no plan id.
// FallbackWindowHours and FallbackRole bound the degraded-confidence
// user guess used when payment verification is exhausted.
type WebhookConfig struct {
	FallbackPlanID       int     `mapstructure:"fallback_plan_id"`
	MaxPlanID            int     `mapstructure:"max_plan_id"`
	VerifyAttempts       int     `mapstructure:"verify_attempts"`
	VerifyBackoffSeconds float64 `mapstructure:"verify_backoff_seconds"`
	FallbackWindowHours  int     `mapstructure:"fallback_window_hours"`
	FallbackRole         string  `mapstructure:"fallback_role"`
}
