// Package model provides the gorm models of the embedded sqlite vector store.
package model

import (
	"time"
)

// Collection is a named partition with a fixed dimension and distance metric.
type Collection struct {
	Name      string    `json:"name" gorm:"primaryKey;type:varchar(255)"`
	Dimension int       `json:"dimension" gorm:"not null"`
	Distance  string    `json:"distance" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Collection.
func (Collection) TableName() string {
	return "embedding_collections"
}

// VectorPoint is a stored embedding. Vector holds little-endian float32 values.
type VectorPoint struct {
	Collection string    `json:"collection" gorm:"primaryKey;type:varchar(255)"`
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Vector     []byte    `json:"-" gorm:"not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Payload    string    `json:"payload" gorm:"type:text"` // JSON object without the text key
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for VectorPoint.
func (VectorPoint) TableName() string {
	return "embedding_points"
}
