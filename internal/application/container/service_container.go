package container

import (
	"fmt"
	"sync"
	"time"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/cache"
	"github.com/easayliu/smart-rename/internal/application/services/events"
	"github.com/easayliu/smart-rename/internal/application/services/invoker"
	"github.com/easayliu/smart-rename/internal/application/services/notification"
	"github.com/easayliu/smart-rename/internal/application/services/pipeline"
	"github.com/easayliu/smart-rename/internal/application/services/sampler"
	"github.com/easayliu/smart-rename/internal/application/services/scheduler"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/internal/infrastructure/extractor"
	"github.com/easayliu/smart-rename/internal/infrastructure/filesystem"
	"github.com/easayliu/smart-rename/internal/infrastructure/llm"
	"github.com/easayliu/smart-rename/internal/infrastructure/ratelimit"
	"github.com/easayliu/smart-rename/internal/infrastructure/repository"
	"github.com/easayliu/smart-rename/internal/infrastructure/telegram"
	"github.com/easayliu/smart-rename/pkg/logger"
)

// ServiceContainer 服务容器 - 实现依赖注入
// 核心服务（流水线及其依赖）和后台服务（调度、通知、扫描记录）分别懒加载，
// CLI只用到核心服务，不会创建数据目录或连接Telegram
type ServiceContainer struct {
	config *config.Config

	bus        *events.Bus
	llmService llm.Service
	limiter    *ratelimit.RateLimiter
	invoker    *invoker.Invoker
	cache      *cache.ResultCache
	pipeline   *pipeline.Pipeline
	reader     *filesystem.DescriptorReader
	scanner    *filesystem.Scanner

	scanRepo            *repository.ScanRepository
	scheduler           *scheduler.SchedulerService
	notifier            *telegram.Client
	notificationService *notification.AppNotificationService

	coreOnce       sync.Once
	coreErr        error
	backgroundOnce sync.Once
	backgroundErr  error
}

// NewServiceContainer 创建服务容器
func NewServiceContainer(cfg *config.Config) *ServiceContainer {
	return &ServiceContainer{config: cfg}
}

// GetNamingService 命名流水线
func (c *ServiceContainer) GetNamingService() (contracts.NamingService, error) {
	if err := c.initCore(); err != nil {
		return nil, err
	}
	return c.pipeline, nil
}

// GetPipeline 具体流水线实例（需要缓存统计等扩展信息时使用）
func (c *ServiceContainer) GetPipeline() (*pipeline.Pipeline, error) {
	if err := c.initCore(); err != nil {
		return nil, err
	}
	return c.pipeline, nil
}

// GetInvoker 带重试的调用器
func (c *ServiceContainer) GetInvoker() (*invoker.Invoker, error) {
	if err := c.initCore(); err != nil {
		return nil, err
	}
	return c.invoker, nil
}

// GetDescriptorReader 文件描述读取器
func (c *ServiceContainer) GetDescriptorReader() *filesystem.DescriptorReader {
	if c.reader == nil {
		c.reader = filesystem.NewDescriptorReader()
	}
	return c.reader
}

// GetScanner 目录扫描器
func (c *ServiceContainer) GetScanner() (*filesystem.Scanner, error) {
	if err := c.initCore(); err != nil {
		return nil, err
	}
	return c.scanner, nil
}

// GetScheduler 调度服务
func (c *ServiceContainer) GetScheduler() (*scheduler.SchedulerService, error) {
	if err := c.initBackground(); err != nil {
		return nil, err
	}
	return c.scheduler, nil
}

// GetEventBus 事件总线
func (c *ServiceContainer) GetEventBus() *events.Bus {
	if err := c.initCore(); err != nil {
		return nil
	}
	return c.bus
}

// initCore 初始化核心服务（单例）
func (c *ServiceContainer) initCore() error {
	c.coreOnce.Do(func() {
		c.coreErr = c.buildCore()
		if c.coreErr != nil {
			logger.Error("Failed to initialize core services", "error", c.coreErr)
		}
	})
	return c.coreErr
}

func (c *ServiceContainer) buildCore() error {
	logger.Info("Initializing service container")
	cfg := c.config

	// 1. 基础设施
	c.bus = events.NewBus(events.DefaultBufferSize)

	factory := llm.NewFactory(&cfg.LLM)
	service, err := factory.CreateService()
	if err != nil {
		return fmt.Errorf("create llm service: %w", err)
	}
	c.llmService = service
	c.limiter = factory.RateLimiter()
	c.invoker = invoker.New(service, invoker.ConfigFromApp(cfg.Retry), invoker.WithEventBus(c.bus))

	// 2. 缓存与采样
	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache, err = cache.New(cfg.Cache.Capacity, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
		if err != nil {
			return fmt.Errorf("create result cache: %w", err)
		}
	}
	c.cache = resultCache

	ext := extractor.New(cfg.Sampler.MaxTextBytes, cfg.Sampler.MaxImageBytes)
	smp := sampler.New(ext, sampler.Config{
		MaxTextBytes:  cfg.Sampler.MaxTextBytes,
		MaxImageBytes: cfg.Sampler.MaxImageBytes,
	})

	// 3. 流水线
	pipelineCfg, err := pipeline.ConfigFromApp(cfg)
	if err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}
	c.pipeline = pipeline.New(c.invoker, pipelineCfg,
		pipeline.WithSampler(smp),
		pipeline.WithCache(resultCache),
		pipeline.WithEventBus(c.bus),
	)

	c.reader = filesystem.NewDescriptorReader()
	c.scanner = filesystem.NewScanner(filesystem.NewPathValidator(), c.reader)

	logger.Info("Service container initialized successfully",
		"provider", c.invoker.Capabilities().Provider,
		"strategy", pipelineCfg.Strategy.Name,
		"cache", cfg.Cache.Enabled)
	return nil
}

// initBackground 初始化后台服务（单例），依赖核心服务
func (c *ServiceContainer) initBackground() error {
	if err := c.initCore(); err != nil {
		return err
	}
	c.backgroundOnce.Do(func() {
		c.backgroundErr = c.buildBackground()
		if c.backgroundErr != nil {
			logger.Error("Failed to initialize background services", "error", c.backgroundErr)
		}
	})
	return c.backgroundErr
}

func (c *ServiceContainer) buildBackground() error {
	cfg := c.config

	repo, err := repository.NewScanRepository(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("create scan repository: %w", err)
	}
	c.scanRepo = repo

	c.notifier = telegram.NewClient(&cfg.Telegram)
	c.notificationService = notification.NewAppNotificationService(c.notifier, notification.DefaultRateLimitInterval)
	c.notificationService.Subscribe(c.bus)

	tasks := cfg.Scheduler.Tasks
	if !cfg.Scheduler.Enabled {
		tasks = nil
	}
	c.scheduler = scheduler.NewSchedulerService(tasks, c.pipeline, c.scanner, repo)
	return nil
}

// Shutdown 关闭服务容器
func (c *ServiceContainer) Shutdown() {
	logger.Info("Shutting down service container")

	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.pipeline != nil {
		if n := c.pipeline.CancelAll(); n > 0 {
			logger.Info("Canceled in-flight files", "count", n)
		}
	}
	if c.bus != nil {
		c.bus.Close()
	}

	logger.Info("Service container shutdown completed")
}

// ValidateServices 验证服务配置
func (c *ServiceContainer) ValidateServices() error {
	if err := c.initBackground(); err != nil {
		return err
	}
	if c.pipeline == nil {
		return fmt.Errorf("naming pipeline not initialized")
	}
	if c.scheduler == nil {
		return fmt.Errorf("scheduler service not initialized")
	}

	logger.Info("Service validation completed successfully")
	return nil
}

// GetServiceHealth 获取服务健康状态
func (c *ServiceContainer) GetServiceHealth() map[string]interface{} {
	health := map[string]interface{}{
		"container": "healthy",
	}
	if err := c.initCore(); err != nil {
		health["container"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	caps := c.invoker.Capabilities()
	services := map[string]interface{}{
		"pipeline":       c.getServiceStatus(c.pipeline != nil),
		"llm_provider":   caps.Provider,
		"active_files":   c.pipeline.Active(),
		"events_dropped": c.bus.Dropped(),
	}
	if until := c.limiter.PausedUntil(); until.After(time.Now()) {
		services["provider_paused_until"] = until
	}
	if c.cache != nil {
		services["cache"] = c.cache.Stats()
	}
	if c.scheduler != nil {
		services["scheduler"] = c.getServiceStatus(true)
		services["scheduled_tasks"] = len(c.scheduler.Tasks())
	}
	if c.notifier != nil {
		services["telegram"] = c.getServiceStatus(c.notifier.IsEnabled())
	}
	health["services"] = services
	return health
}

// getServiceStatus 获取服务状态
func (c *ServiceContainer) getServiceStatus(initialized bool) string {
	if initialized {
		return "healthy"
	}
	return "unhealthy"
}
