package model

import "time"

// Task represents a single tracked item. Status is mandatory, the owner is not.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"dueDate"`
	Comments    string    `json:"comments"`
	IsPublic    bool      `gorm:"not null;index" json:"isPublic"`
	IsDeleted   bool      `gorm:"not null;index" json:"isDeleted"`
	StatusID    uint      `gorm:"not null;index" json:"statusId"`
	Status      *Status   `json:"status,omitempty"`
	UserID      *uint     `gorm:"index" json:"userId"`
	User        *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskSummary is the projection returned by task listings.
type TaskSummary struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	DueDate       time.Time `json:"dueDate"`
	StatusName    string    `json:"status"`
	OwnerUsername *string   `json:"owner"`
}
