package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository stores inbound WhatsApp messages.
type MessageRepository struct {
	db *gorm.DB
}

// Save inserts m unless a message with the same MessageID is already
// stored. It reports whether a row was inserted.
func (r *MessageRepository) Save(ctx context.Context, m *WhatsAppMessage) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "message_id"}}, DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByMessageID returns the message with the provider id, or nil.
func (r *MessageRepository) FindByMessageID(ctx context.Context, messageID string) (*WhatsAppMessage, error) {
	return first[WhatsAppMessage](r.db.WithContext(ctx).Where("message_id = ?", messageID))
}
