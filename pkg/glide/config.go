package glide

import (
	"encoding/base64"
	"strings"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/glide-client/internal/constants"
)

// Credentials authenticate Table API requests. The two implementations are
// BasicCredentials and TokenCredentials.
type Credentials interface {
	// AuthorizationHeader returns the value of the Authorization header.
	AuthorizationHeader() string
	isCredentials()
}

// BasicCredentials authenticate with a user name and password.
type BasicCredentials struct {
	User     string
	Password string
}

// AuthorizationHeader implements Credentials.
func (c BasicCredentials) AuthorizationHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.User+":"+c.Password))
}

// String hides the password.
func (c BasicCredentials) String() string {
	return "basic(" + c.User + ":" + constants.MaskedSecret + ")"
}

func (BasicCredentials) isCredentials() {}

// TokenCredentials authenticate with a bearer token.
type TokenCredentials struct {
	Token string
}

// AuthorizationHeader implements Credentials.
func (c TokenCredentials) AuthorizationHeader() string {
	return "Bearer " + c.Token
}

// String hides the token.
func (c TokenCredentials) String() string {
	return "token(" + constants.MaskedSecret + ")"
}

func (TokenCredentials) isCredentials() {}

// Basic returns basic-auth credentials.
func Basic(user, password string) Credentials {
	return BasicCredentials{User: user, Password: password}
}

// Token returns bearer-token credentials.
func Token(token string) Credentials {
	return TokenCredentials{Token: token}
}

// ConfigProvider resolves the configuration a cursor is built with.
type ConfigProvider interface {
	Resolve() (*Config, error)
}

// Config holds the credentials and instance host for a cursor.
type Config struct {
	Credentials Credentials
	// Instance is the instance host, e.g. "dev12345.service-now.com". A scheme
	// may be included; https is assumed otherwise.
	Instance string
}

// NewConfig creates a configuration from explicit values.
func NewConfig(instance string, credentials Credentials) *Config {
	return &Config{
		Credentials: credentials,
		Instance:    instance,
	}
}

// SetInstance replaces the instance host.
func (c *Config) SetInstance(instance string) {
	c.Instance = instance
}

// SetCredentials replaces the credentials.
func (c *Config) SetCredentials(credentials Credentials) {
	c.Credentials = credentials
}

// BaseURL returns the normalized instance URL without a trailing slash.
func (c *Config) BaseURL() string {
	if c == nil {
		return ""
	}

	base := strings.TrimSuffix(strings.TrimSpace(c.Instance), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return base
}

// Resolve validates the configuration and returns a copy, which lets a
// *Config be used wherever a ConfigProvider is expected.
func (c *Config) Resolve() (*Config, error) {
	if c == nil || c.Credentials == nil {
		return nil, ErrNoCredentialsFound
	}

	if strings.TrimSpace(c.Instance) == "" {
		return nil, ErrNoInstanceFound
	}

	resolved := *c

	return &resolved, nil
}

// ViperProvider resolves configuration from a viper instance using the keys
// "token", "user", "password" and "instance". Empty values count as unset.
type ViperProvider struct {
	v *viper.Viper
}

// NewViperProvider wraps an existing viper instance.
func NewViperProvider(v *viper.Viper) *ViperProvider {
	return &ViperProvider{v: v}
}

// NewEnvProvider reads SNOW_API_TOKEN, SNOW_API_USER, SNOW_API_PASSWD and
// SNOW_API_INSTANCE from the process environment.
func NewEnvProvider() *ViperProvider {
	v := viper.New()
	BindEnv(v)

	return NewViperProvider(v)
}

// BindEnv binds the SNOW_API_* variables to the provider keys of v.
func BindEnv(v *viper.Viper) {
	_ = v.BindEnv(constants.ConfigKeyToken, constants.EnvAPIToken)
	_ = v.BindEnv(constants.ConfigKeyUser, constants.EnvAPIUser)
	_ = v.BindEnv(constants.ConfigKeyPassword, constants.EnvAPIPassword)
	_ = v.BindEnv(constants.ConfigKeyInstance, constants.EnvAPIInstance)
}

// Resolve implements ConfigProvider. A token takes precedence over a user and
// password pair; both halves of the pair are required.
func (p *ViperProvider) Resolve() (*Config, error) {
	credentials, err := p.credentials()
	if err != nil {
		return nil, err
	}

	instance := strings.TrimSpace(p.v.GetString(constants.ConfigKeyInstance))
	if instance == "" {
		return nil, ErrNoInstanceFound
	}

	return NewConfig(instance, credentials), nil
}

func (p *ViperProvider) credentials() (Credentials, error) {
	if token := strings.TrimSpace(p.v.GetString(constants.ConfigKeyToken)); token != "" {
		return Token(token), nil
	}

	user := p.v.GetString(constants.ConfigKeyUser)
	password := p.v.GetString(constants.ConfigKeyPassword)

	if user == "" || password == "" {
		return nil, ErrNoCredentialsFound
	}

	return Basic(user, password), nil
}
