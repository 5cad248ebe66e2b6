package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dbehnke/dcs-nexus/pkg/logger"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logger.New(logger.Config{Level: "error"})
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDB(Config{Path: dbPath}, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB(t *testing.T) {
	db := testDB(t)

	if db.db == nil {
		t.Error("Expected non-nil database connection")
	}
}

func TestDetection_BeforeCreate(t *testing.T) {
	db := testDB(t)

	// Create detection without timestamps
	det := &Detection{
		Channel:    "north",
		Code:       19,
		Designator: "D023",
	}

	if err := db.GetDB().Create(det).Error; err != nil {
		t.Fatalf("Failed to create detection: %v", err)
	}

	if det.ID == 0 {
		t.Error("Expected non-zero ID after creation")
	}
	if det.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set by hook")
	}
	if det.FirstSeen.IsZero() {
		t.Error("Expected FirstSeen to be set by hook")
	}
	if det.LastSeen.IsZero() {
		t.Error("Expected LastSeen to be set by hook")
	}
	if det.Events != 1 {
		t.Errorf("Expected Events to default to 1, got %d", det.Events)
	}
}

func TestDetectionRepository_RecordDetection(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}

	detections, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("Failed to get recent detections: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].Designator != "D023" {
		t.Errorf("Expected designator D023, got %s", detections[0].Designator)
	}
	if detections[0].Events != 1 {
		t.Errorf("Expected 1 event, got %d", detections[0].Events)
	}
}

func TestDetectionRepository_ContinuesRecentRow(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}
	// Same designator within the continuation window continues the row
	if err := repo.RecordDetection("north", 19, "D023", false, now.Add(500*time.Millisecond)); err != nil {
		t.Fatalf("Failed to record continuation: %v", err)
	}

	detections, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("Failed to get recent detections: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection row, got %d", len(detections))
	}
	if detections[0].Events != 2 {
		t.Errorf("Expected 2 events, got %d", detections[0].Events)
	}
}

func TestDetectionRepository_NewRowAfterGap(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}
	// Past the continuation window, a new row is created
	if err := repo.RecordDetection("north", 19, "D023", false, now.Add(ContinuationWindow+time.Second)); err != nil {
		t.Fatalf("Failed to record detection after gap: %v", err)
	}

	detections, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("Failed to get recent detections: %v", err)
	}
	if len(detections) != 2 {
		t.Errorf("Expected 2 detection rows, got %d", len(detections))
	}
}

func TestDetectionRepository_SeparateChannels(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record north detection: %v", err)
	}
	if err := repo.RecordDetection("south", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record south detection: %v", err)
	}

	north, err := repo.GetByChannel("north", 10)
	if err != nil {
		t.Fatalf("Failed to get north detections: %v", err)
	}
	if len(north) != 1 {
		t.Errorf("Expected 1 north detection, got %d", len(north))
	}
	if north[0].Channel != "north" {
		t.Errorf("Expected channel north, got %s", north[0].Channel)
	}
}

func TestDetectionRepository_GetRecent(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	codes := []struct {
		code       int
		designator string
	}{
		{19, "D023"}, {21, "D025"}, {25, "D031"}, {26, "D032"}, {30, "D036"},
	}
	for i, c := range codes {
		at := now.Add(time.Duration(i) * time.Minute)
		if err := repo.RecordDetection("north", c.code, c.designator, false, at); err != nil {
			t.Fatalf("Failed to record detection %d: %v", i, err)
		}
	}

	detections, err := repo.GetRecent(3)
	if err != nil {
		t.Fatalf("Failed to get recent detections: %v", err)
	}
	if len(detections) != 3 {
		t.Errorf("Expected 3 detections, got %d", len(detections))
	}

	// Verify order (most recent first)
	if len(detections) >= 2 {
		if detections[0].LastSeen.Before(detections[1].LastSeen) {
			t.Error("Expected detections to be ordered by last_seen DESC")
		}
	}
}

func TestDetectionRepository_GetRecentPaginated(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	designators := []string{"D023", "D025", "D031", "D032", "D036", "D043", "D047", "D051", "D054", "D065"}
	for i, d := range designators {
		at := now.Add(time.Duration(i) * time.Minute)
		if err := repo.RecordDetection("north", 19, d, false, at); err != nil {
			t.Fatalf("Failed to record detection %d: %v", i, err)
		}
	}

	detections, total, err := repo.GetRecentPaginated(1, 5)
	if err != nil {
		t.Fatalf("Failed to get paginated detections: %v", err)
	}
	if len(detections) != 5 {
		t.Errorf("Expected 5 detections on page 1, got %d", len(detections))
	}
	if total != 10 {
		t.Errorf("Expected total of 10, got %d", total)
	}

	detections2, total2, err := repo.GetRecentPaginated(2, 5)
	if err != nil {
		t.Fatalf("Failed to get paginated detections page 2: %v", err)
	}
	if len(detections2) != 5 {
		t.Errorf("Expected 5 detections on page 2, got %d", len(detections2))
	}
	if total2 != 10 {
		t.Errorf("Expected total of 10 on page 2, got %d", total2)
	}
}

func TestDetectionRepository_GetByDesignator(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}
	if err := repo.RecordDetection("south", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}
	if err := repo.RecordDetection("north", 21, "D025", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}

	detections, err := repo.GetByDesignator("D023", 10)
	if err != nil {
		t.Fatalf("Failed to get detections by designator: %v", err)
	}
	if len(detections) != 2 {
		t.Errorf("Expected 2 detections for D023, got %d", len(detections))
	}
	for _, d := range detections {
		if d.Designator != "D023" {
			t.Errorf("Expected designator D023, got %s", d.Designator)
		}
	}
}

func TestDetectionRepository_CountByDesignator(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}
	if err := repo.RecordDetection("north", 19, "D023", false, now.Add(ContinuationWindow+time.Second)); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}
	if err := repo.RecordDetection("north", 21, "D025N", true, now); err != nil {
		t.Fatalf("Failed to record detection: %v", err)
	}

	counts, err := repo.CountByDesignator()
	if err != nil {
		t.Fatalf("Failed to count by designator: %v", err)
	}
	if counts["D023"] != 2 {
		t.Errorf("Expected 2 rows for D023, got %d", counts["D023"])
	}
	if counts["D025N"] != 1 {
		t.Errorf("Expected 1 row for D025N, got %d", counts["D025N"])
	}
}

func TestDetectionRepository_DeleteOlderThan(t *testing.T) {
	db := testDB(t)
	repo := NewDetectionRepository(db.GetDB())

	now := time.Now()
	if err := repo.RecordDetection("north", 19, "D023", false, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("Failed to record old detection: %v", err)
	}
	if err := repo.RecordDetection("north", 21, "D025", false, now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("Failed to record recent detection: %v", err)
	}

	deleted, err := repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete old detections: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deletion, got %d", deleted)
	}

	detections, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("Failed to get remaining detections: %v", err)
	}
	if len(detections) != 1 {
		t.Errorf("Expected 1 remaining detection, got %d", len(detections))
	}
}
