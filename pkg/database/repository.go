package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ContinuationWindow is how long after the last event a repeated detection
// of the same designator on the same channel counts as the same transmission.
const ContinuationWindow = 2 * time.Second

// DetectionRepository handles detection database operations
type DetectionRepository struct {
	db *gorm.DB
}

// NewDetectionRepository creates a new detection repository
func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// RecordDetection records a confirmed detection. If the most recent row for
// the same channel and designator was seen within ContinuationWindow, that
// row is continued; otherwise a new row is created.
func (r *DetectionRepository) RecordDetection(channel string, code int, designator string, inverted bool, at time.Time) error {
	var latest Detection
	err := r.db.Where("channel = ? AND designator = ?", channel, designator).
		Order("last_seen DESC").
		First(&latest).Error
	if err == nil && at.Sub(latest.LastSeen) <= ContinuationWindow {
		return r.db.Model(&latest).Updates(map[string]interface{}{
			"last_seen": at,
			"events":    gorm.Expr("events + 1"),
		}).Error
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(&Detection{
		Channel:    channel,
		Code:       code,
		Designator: designator,
		Inverted:   inverted,
		FirstSeen:  at,
		LastSeen:   at,
		Events:     1,
	}).Error
}

// GetRecent retrieves the most recent N detections
func (r *DetectionRepository) GetRecent(limit int) ([]Detection, error) {
	var detections []Detection
	err := r.db.Order("last_seen DESC").Limit(limit).Find(&detections).Error
	return detections, err
}

// GetRecentPaginated retrieves detections with pagination
func (r *DetectionRepository) GetRecentPaginated(page, perPage int) ([]Detection, int64, error) {
	var detections []Detection
	var total int64

	// Count total records
	if err := r.db.Model(&Detection{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated results
	offset := (page - 1) * perPage
	err := r.db.Order("last_seen DESC").
		Offset(offset).
		Limit(perPage).
		Find(&detections).Error

	return detections, total, err
}

// GetByChannel retrieves detections for a specific channel
func (r *DetectionRepository) GetByChannel(channel string, limit int) ([]Detection, error) {
	var detections []Detection
	err := r.db.Where("channel = ?", channel).
		Order("last_seen DESC").
		Limit(limit).
		Find(&detections).Error
	return detections, err
}

// GetByDesignator retrieves detections for a specific designator
func (r *DetectionRepository) GetByDesignator(designator string, limit int) ([]Detection, error) {
	var detections []Detection
	err := r.db.Where("designator = ?", designator).
		Order("last_seen DESC").
		Limit(limit).
		Find(&detections).Error
	return detections, err
}

// GetByTimeRange retrieves detections within a time range
func (r *DetectionRepository) GetByTimeRange(start, end time.Time, limit int) ([]Detection, error) {
	var detections []Detection
	err := r.db.Where("first_seen BETWEEN ? AND ?", start, end).
		Order("last_seen DESC").
		Limit(limit).
		Find(&detections).Error
	return detections, err
}

// CountByDesignator returns the number of detection rows per designator
func (r *DetectionRepository) CountByDesignator() (map[string]int64, error) {
	type row struct {
		Designator string
		Count      int64
	}
	var rows []row
	err := r.db.Model(&Detection{}).
		Select("designator, COUNT(*) as count").
		Group("designator").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Designator] = r.Count
	}
	return counts, nil
}

// DeleteOlderThan deletes detections last seen before the specified time
func (r *DetectionRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("last_seen < ?", before).Delete(&Detection{})
	return result.RowsAffected, result.Error
}
