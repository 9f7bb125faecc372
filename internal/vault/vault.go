// Package vault loads runtime secrets from HashiCorp Vault's KV v2 engine
// at startup and overlays them onto the configuration, so credentials never
// have to live in environment files on shared hosts.
package vault

import (
	"context"
	"fmt"
	"log/slog"

	vaultapi "github.com/hashicorp/vault/api"

	"hireflow/internal/config"
)

// Client wraps a Vault API client bound to one KV v2 mount
type Client struct {
	api       *vaultapi.Client
	mountPath string
}

// NewClient creates a Vault client from configuration
func NewClient(cfg *config.VaultConfig) (*Client, error) {
	apiCfg := vaultapi.DefaultConfig()
	apiCfg.Address = cfg.Address

	client, err := vaultapi.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{api: client, mountPath: cfg.MountPath}, nil
}

// ReadSecrets reads all key/value pairs from the named secret
func (c *Client) ReadSecrets(secretKey string) (map[string]string, error) {
	secret, err := c.api.KVv2(c.mountPath).Get(context.Background(), secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret %q: %w", secretKey, err)
	}

	values := map[string]string{}
	for key, value := range secret.Data {
		str, ok := value.(string)
		if !ok {
			slog.Warn("skipping non-string vault value", "key", key)
			continue
		}
		values[key] = str
	}
	return values, nil
}

// LoadInto reads the configured secret and overlays known keys onto cfg.
// Keys absent from the secret leave the environment-provided value in place.
func LoadInto(cfg *config.Config) error {
	if !cfg.Vault.Enabled {
		return nil
	}

	client, err := NewClient(&cfg.Vault)
	if err != nil {
		return err
	}

	values, err := client.ReadSecrets(cfg.Vault.SecretKey)
	if err != nil {
		return err
	}

	overlay := map[string]*string{
		"jwt_secret":      &cfg.JWT.Secret,
		"db_password":     &cfg.Database.Password,
		"smtp_password":   &cfg.Email.SMTPPassword,
		"parser_api_key":  &cfg.Parser.APIKey,
		"meeting_api_key": &cfg.Meeting.APIKey,
	}
	loaded := 0
	for key, target := range overlay {
		if value, ok := values[key]; ok && value != "" {
			*target = value
			loaded++
		}
	}

	slog.Info("secrets loaded from vault", "secret", cfg.Vault.SecretKey, "keys", loaded)
	return nil
}
