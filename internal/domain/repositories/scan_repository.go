package repositories

import (
	"github.com/easayliu/smart-rename/internal/domain/entities"
)

// ScanRepository 扫描记录存储库接口
type ScanRepository interface {
	Create(record *entities.ScanRecord) error
	Update(record *entities.ScanRecord) error
	GetByID(id string) (*entities.ScanRecord, error)
	List(limit int) ([]*entities.ScanRecord, error)
}
