package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentVersion is one immutable revision snapshot for a content identity.
// Rows are append-only: no update or delete path exists, so the model
// carries no UpdatedAt/DeletedAt columns. The current state of a content
// identity is always the row with the highest Seq.
type ContentVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID     string    `gorm:"column:content_id;not null;index:idx_content_version,unique,priority:1" json:"content_id"`
	Seq           int       `gorm:"column:seq;not null;index:idx_content_version,unique,priority:2" json:"seq"`
	Content       string    `gorm:"column:content;type:text;not null" json:"content"`
	ChangeSummary string    `gorm:"column:change_summary" json:"change_summary"`
	Author        string    `gorm:"column:author;not null" json:"author"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (ContentVersion) TableName() string { return "content_version" }
