package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easayliu/smart-rename/internal/domain/entities"
	"github.com/easayliu/smart-rename/internal/domain/repositories"
)

// MaxScanRecords 保留的扫描记录上限，超出时删除最早的记录
const MaxScanRecords = 50

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("scan record not found")

// ScanRepository 基于JSON文件的扫描记录存储
type ScanRepository struct {
	filePath string
	mu       sync.RWMutex
	records  map[string]*entities.ScanRecord
}

var _ repositories.ScanRepository = (*ScanRepository)(nil)

func NewScanRepository(dataDir string) (*ScanRepository, error) {
	// 确保数据目录存在
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &ScanRepository{
		filePath: filepath.Join(dataDir, "scan_records.json"),
		records:  make(map[string]*entities.ScanRecord),
	}

	if err := repo.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load scan records: %w", err)
	}

	return repo, nil
}

// load 从文件加载记录
func (r *ScanRepository) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	var records []*entities.ScanRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string]*entities.ScanRecord, len(records))
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return nil
}

// saveUnlocked 写回文件（调用时必须已经持有写锁）
// 先写临时文件再改名，避免中途失败留下半个文件
func (r *ScanRepository) saveUnlocked() error {
	data, err := json.MarshalIndent(r.sortedUnlocked(), "", "  ")
	if err != nil {
		return err
	}

	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath)
}

// sortedUnlocked 按开始时间倒序
func (r *ScanRepository) sortedUnlocked() []*entities.ScanRecord {
	records := make([]*entities.ScanRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records
}

// pruneUnlocked 超过上限时删除最早的记录
func (r *ScanRepository) pruneUnlocked() {
	if len(r.records) <= MaxScanRecords {
		return
	}
	sorted := r.sortedUnlocked()
	for _, rec := range sorted[MaxScanRecords:] {
		delete(r.records, rec.ID)
	}
}

// Create 创建记录，ID为空时生成
func (r *ScanRepository) Create(record *entities.ScanRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = snapshot(record)
	r.pruneUnlocked()
	return r.saveUnlocked()
}

// Update 更新已有记录
func (r *ScanRepository) Update(record *entities.ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, record.ID)
	}
	r.records[record.ID] = snapshot(record)
	return r.saveUnlocked()
}

// GetByID 根据ID获取记录
func (r *ScanRepository) GetByID(id string) (*entities.ScanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snapshot(rec), nil
}

// List 按开始时间倒序返回最近的记录，limit<=0 返回全部
func (r *ScanRepository) List(limit int) ([]*entities.ScanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.sortedUnlocked()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for i, rec := range records {
		records[i] = snapshot(rec)
	}
	return records, nil
}

// snapshot 存取都使用副本，调用方修改记录不会影响存储
// Results 只会被整体替换，浅拷贝即可
func snapshot(rec *entities.ScanRecord) *entities.ScanRecord {
	cp := *rec
	return &cp
}
