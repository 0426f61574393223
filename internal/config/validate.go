package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Billing.TransitionRetries < 1 {
		return fmt.Errorf("billing.transition_retries must be >= 1 (got %d)", c.Billing.TransitionRetries)
	}
	if c.Billing.MaxItemsPerInvoice < 1 {
		return fmt.Errorf("billing.max_items_per_invoice must be >= 1 (got %d)", c.Billing.MaxItemsPerInvoice)
	}

	if c.RateLimit.Enabled && c.RateLimit.MaxPerMinute < 1 {
		return fmt.Errorf("rate_limit.max_per_minute must be >= 1 (got %d)", c.RateLimit.MaxPerMinute)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}
