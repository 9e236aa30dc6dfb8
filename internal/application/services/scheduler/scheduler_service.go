package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/easayliu/smart-rename/internal/application/contracts"
	"github.com/easayliu/smart-rename/internal/application/services/pipeline"
	"github.com/easayliu/smart-rename/internal/domain/entities"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
	"github.com/easayliu/smart-rename/internal/domain/repositories"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/pkg/logger"
)

// ManualTask 手动触发扫描记录中的任务名
const ManualTask = "manual"

// ErrAlreadyRunning 调度器已启动
var ErrAlreadyRunning = errors.New("scheduler already running")

// DirectoryScanner 列出目录下的文件
type DirectoryScanner interface {
	Scan(ctx context.Context, root string, recursive bool) ([]naming.FileDescriptor, error)
}

// TaskStatus 定时任务的调度状态
type TaskStatus struct {
	Name      string    `json:"name"`
	Cron      string    `json:"cron"`
	Path      string    `json:"path"`
	Recursive bool      `json:"recursive"`
	Next      time.Time `json:"next,omitempty"`
	Prev      time.Time `json:"prev,omitempty"`
}

// SchedulerService 按cron表达式扫描目录并保存扫描记录
type SchedulerService struct {
	cron    *cron.Cron
	tasks   []config.ScheduledTask
	naming  contracts.NamingService
	scanner DirectoryScanner
	repo    repositories.ScanRepository
	now     func() time.Time

	mu      sync.RWMutex
	jobs    map[string]cron.EntryID
	running bool

	// 后台扫描（StartScan）的生命周期
	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
}

func NewSchedulerService(tasks []config.ScheduledTask, namingSvc contracts.NamingService, scanner DirectoryScanner, repo repositories.ScanRepository) *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SchedulerService{
		cron:       cron.New(), // 标准5字段格式（分 时 日 月 周）
		tasks:      tasks,
		naming:     namingSvc,
		scanner:    scanner,
		repo:       repo,
		now:        time.Now,
		jobs:       make(map[string]cron.EntryID),
		baseCtx:    ctx,
		cancelBase: cancel,
	}
}

// Start 注册所有启用的任务并启动调度器
// 表达式无效的任务只记录日志，不影响其他任务
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	for _, task := range s.tasks {
		if !task.Enabled {
			continue
		}
		if err := s.scheduleTask(task); err != nil {
			logger.Error("Failed to schedule task", "task", task.Name, "cron", task.Cron, "error", err)
		}
	}

	s.cron.Start()
	s.running = true
	logger.Info("Scheduler service started", "tasks", len(s.jobs))
	return nil
}

// Stop 停止调度器，等待正在执行的扫描结束
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	s.cancelBase()
	if wasRunning {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	if wasRunning {
		logger.Info("Scheduler service stopped")
	}
}

// Tasks 返回已调度任务及下次运行时间
func (s *SchedulerService) Tasks() []TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]TaskStatus, 0, len(s.jobs))
	for _, task := range s.tasks {
		entryID, ok := s.jobs[task.Name]
		if !ok {
			continue
		}
		entry := s.cron.Entry(entryID)
		statuses = append(statuses, TaskStatus{
			Name:      task.Name,
			Cron:      task.Cron,
			Path:      task.Path,
			Recursive: task.Recursive,
			Next:      entry.Next,
			Prev:      entry.Prev,
		})
	}
	return statuses
}

// scheduleTask 调度单个任务（需要持有写锁）
func (s *SchedulerService) scheduleTask(task config.ScheduledTask) error {
	if _, exists := s.jobs[task.Name]; exists {
		return fmt.Errorf("duplicate task name %q", task.Name)
	}
	if _, err := cron.ParseStandard(task.Cron); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	entryID, err := s.cron.AddFunc(task.Cron, func() {
		s.executeTask(task)
	})
	if err != nil {
		return err
	}
	s.jobs[task.Name] = entryID
	return nil
}

// executeTask 执行定时任务
func (s *SchedulerService) executeTask(task config.ScheduledTask) {
	logger.Info("Executing scheduled task", "task", task.Name, "path", task.Path)

	record, err := s.runScan(s.baseCtx, task.Name, "scheduler", task.Path, task.Recursive)
	if err != nil {
		logger.Error("Scheduled scan failed", "task", task.Name, "error", err)
		return
	}
	logger.Info("Scheduled scan finished",
		"task", task.Name,
		"id", record.ID,
		"status", record.Status,
		"files", record.Summary.Total,
		"tokens_used", record.Summary.TotalTokens)
}

// RunNow 同步扫描目录并返回扫描记录
func (s *SchedulerService) RunNow(ctx context.Context, path string, recursive bool) (*entities.ScanRecord, error) {
	return s.runScan(ctx, ManualTask, "api", path, recursive)
}

// StartScan 创建扫描记录后在后台执行，立即返回running状态的记录
func (s *SchedulerService) StartScan(path string, recursive bool) (*entities.ScanRecord, error) {
	record := s.newRecord(ManualTask, path, recursive)
	if err := s.repo.Create(record); err != nil {
		return nil, fmt.Errorf("create scan record: %w", err)
	}
	started := *record

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.execute(s.baseCtx, record, "api"); err != nil {
			logger.Warn("Background scan failed", "id", record.ID, "path", path, "error", err)
		}
	}()
	return &started, nil
}

// GetScan 获取扫描记录
func (s *SchedulerService) GetScan(id string) (*entities.ScanRecord, error) {
	return s.repo.GetByID(id)
}

// ListScans 最近的扫描记录
func (s *SchedulerService) ListScans(limit int) ([]*entities.ScanRecord, error) {
	return s.repo.List(limit)
}

func (s *SchedulerService) newRecord(task, path string, recursive bool) *entities.ScanRecord {
	return &entities.ScanRecord{
		Task:      task,
		Path:      path,
		Recursive: recursive,
		Status:    entities.ScanStatusRunning,
		StartedAt: s.now(),
	}
}

func (s *SchedulerService) runScan(ctx context.Context, task, source, path string, recursive bool) (*entities.ScanRecord, error) {
	record := s.newRecord(task, path, recursive)
	if err := s.repo.Create(record); err != nil {
		return nil, fmt.Errorf("create scan record: %w", err)
	}
	err := s.execute(ctx, record, source)
	return record, err
}

// execute 扫描、批量命名、保存结果
// 扫描失败时记录状态为error，文件级失败记为partial
func (s *SchedulerService) execute(ctx context.Context, record *entities.ScanRecord, source string) error {
	files, err := s.scanner.Scan(ctx, record.Path, record.Recursive)
	if err != nil {
		record.Error = err.Error()
		record.Finish(s.now())
		if updateErr := s.repo.Update(record); updateErr != nil {
			logger.Error("Failed to update scan record", "id", record.ID, "error", updateErr)
		}
		return fmt.Errorf("scan %s: %w", record.Path, err)
	}

	batchCtx := pipeline.WithScanPath(pipeline.WithSource(ctx, source), record.Path)
	results := s.naming.ProcessBatch(batchCtx, files)
	stats := s.naming.GetStats(results)

	record.Results = results
	record.Summary = entities.ScanSummary{
		Total:          stats.Total,
		Succeeded:      stats.Succeeded,
		Failed:         stats.Failed,
		ByStage:        stats.ByStage,
		TotalTokens:    stats.TotalTokens,
		TotalCost:      stats.TotalCost,
		MeanConfidence: stats.MeanConfidence,
	}
	record.Finish(s.now())

	if err := s.repo.Update(record); err != nil {
		return fmt.Errorf("update scan record: %w", err)
	}
	return nil
}
