package store

import (
	"context"
	"time"

	"salonpro-gateway/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend persists session values in the session_values table.
type GormBackend struct {
	DB *gorm.DB
}

func (g GormBackend) Load(ctx context.Context, sessionID string) (map[string]string, error) {
	var rows []models.SessionValue
	if err := g.DB.WithContext(ctx).Where("session_id = ?", sessionID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (g GormBackend) Save(ctx context.Context, sessionID, key, value string) error {
	row := models.SessionValue{
		SessionID: sessionID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (g GormBackend) Delete(ctx context.Context, sessionID, key string) error {
	return g.DB.WithContext(ctx).
		Where("session_id = ? AND key = ?", sessionID, key).
		Delete(&models.SessionValue{}).Error
}
