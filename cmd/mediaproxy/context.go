package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediaproxy/internal/client"
	"mediaproxy/internal/config"
)

type commandContext struct {
	configFlag *string
	bindFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, bindFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		bindFlag:   bindFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) apiBind() string {
	if c.bindFlag != nil && strings.TrimSpace(*c.bindFlag) != "" {
		return strings.TrimSpace(*c.bindFlag)
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.Paths.APIBind
	}
	return ""
}

func (c *commandContext) withClient(fn func(*client.Client) error) error {
	bind := c.apiBind()
	cl, err := client.New(bind, c.apiToken())
	if err != nil {
		return err
	}
	if cl == nil {
		return fmt.Errorf("control api address is not configured; set paths.api_bind or pass --bind")
	}
	if err := fn(cl); err != nil {
		return wrapClientError(err, bind)
	}
	return nil
}

func (c *commandContext) apiToken() string {
	if cfg := c.configValue(); cfg != nil {
		return cfg.Paths.APIToken
	}
	return ""
}

func wrapClientError(err error, bind string) error {
	if client.IsUnavailable(err) {
		return fmt.Errorf("control daemon is not reachable at %s; start it with `mediaproxy daemon run`", bind)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
