package model

import "time"

// LogAction is the kind of mutation an audit entry records.
type LogAction string

const (
	ActionCreate LogAction = "CREATE"
	ActionUpdate LogAction = "UPDATE"
	ActionDelete LogAction = "DELETE"
)

// EntityTask is the entity name written for task mutations.
const EntityTask = "Task"

// Log is an append-only audit entry. Rows are never updated.
// ActorID is not a foreign key: the header value is trusted as given.
type Log struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Action      LogAction `gorm:"size:16;not null" json:"action"`
	Entity      string    `gorm:"size:64;not null" json:"entity"`
	EntityID    uint      `gorm:"index;not null" json:"entityId"`
	ActorID     *uint     `gorm:"index" json:"actorId"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
