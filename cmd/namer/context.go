package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/easayliu/smart-rename/internal/application/container"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/pkg/logger"
)

type commandContext struct {
	configFlag   *string
	strategyFlag *string
	jsonFlag     *bool
	verboseFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, strategyFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		strategyFlag: strategyFlag,
		jsonFlag:     jsonFlag,
		verboseFlag:  verboseFlag,
	}
}

// ensureConfig 读取配置并应用命令行覆盖，日志统一写stderr
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		level := "warn"
		if c.verboseFlag != nil && *c.verboseFlag {
			level = "debug"
		}
		if err := logger.Init(logger.Options{Level: level, Format: "text", Writer: os.Stderr}); err != nil {
			c.configErr = err
			return
		}

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.LoadConfigFrom(path)
		if err != nil {
			c.configErr = err
			return
		}

		if c.strategyFlag != nil && strings.TrimSpace(*c.strategyFlag) != "" {
			cfg.Pipeline.Strategy = strings.TrimSpace(*c.strategyFlag)
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--strategy: %w", err)
				return
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newContainer 每个命令一个容器，命令结束时由调用方Shutdown
func (c *commandContext) newContainer() (*container.ServiceContainer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return container.NewServiceContainer(cfg), nil
}

// newOfflineContainer 没有API key时关闭LLM，只用于不调用服务商的命令
func (c *commandContext) newOfflineContainer() (*container.ServiceContainer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	offline := *cfg
	if offline.LLM.OpenAI.APIKey == "" {
		offline.LLM.Enabled = false
	}
	return container.NewServiceContainer(&offline), nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}
