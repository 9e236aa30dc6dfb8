package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/easayliu/smart-rename/internal/domain/entities"
	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

func TestScanRepositoryPersists(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewScanRepository(dir)
	if err != nil {
		t.Fatalf("NewScanRepository() error = %v", err)
	}

	rec := &entities.ScanRecord{
		Task:   "nightly",
		Path:   "/photos",
		Status: entities.ScanStatusRunning,
	}
	if err := repo.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}

	rec.Results = []*naming.Result{{OriginalPath: "/photos/IMG_1.jpg", SuggestedName: "harbor", Stage: naming.StagePremium}}
	rec.Summary = entities.ScanSummary{Total: 1, Succeeded: 1}
	rec.Finish(time.Now())
	if err := repo.Update(rec); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reopened, err := NewScanRepository(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, err := reopened.GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != entities.ScanStatusSuccess || len(got.Results) != 1 || got.Results[0].SuggestedName != "harbor" {
		t.Errorf("reloaded record = %+v", got)
	}
}

func TestScanRepositoryCapAndOrder(t *testing.T) {
	repo, err := NewScanRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewScanRepository() error = %v", err)
	}

	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxScanRecords+5; i++ {
		rec := &entities.ScanRecord{ID: fmt.Sprintf("scan-%02d", i), Path: "/p", StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	all, _ := repo.List(0)
	if len(all) != MaxScanRecords {
		t.Fatalf("len(List) = %d, want %d", len(all), MaxScanRecords)
	}
	if all[0].ID != fmt.Sprintf("scan-%02d", MaxScanRecords+4) {
		t.Errorf("newest = %s", all[0].ID)
	}
	if _, err := repo.GetByID("scan-00"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest record should be pruned, err = %v", err)
	}

	recent, _ := repo.List(3)
	if len(recent) != 3 {
		t.Errorf("len(List(3)) = %d", len(recent))
	}
}

func TestScanRepositoryUpdateMissing(t *testing.T) {
	repo, _ := NewScanRepository(t.TempDir())
	err := repo.Update(&entities.ScanRecord{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestScanRecordFinish(t *testing.T) {
	tests := []struct {
		name string
		rec  entities.ScanRecord
		want entities.ScanStatus
	}{
		{"全部成功", entities.ScanRecord{Summary: entities.ScanSummary{Total: 2, Succeeded: 2}}, entities.ScanStatusSuccess},
		{"部分失败", entities.ScanRecord{Summary: entities.ScanSummary{Total: 2, Succeeded: 1, Failed: 1}}, entities.ScanStatusPartial},
		{"扫描失败", entities.ScanRecord{Error: "permission denied"}, entities.ScanStatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			rec.Finish(time.Now())
			if rec.Status != tt.want || rec.FinishedAt == nil {
				t.Errorf("status = %s finished=%v, want %s", rec.Status, rec.FinishedAt, tt.want)
			}
		})
	}
}
