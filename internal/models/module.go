package models

import (
	"time"

	"github.com/lib/pq"
)

// Module describes a course module within a programme.
type Module struct {
	ID            string         `db:"id" json:"id"`
	Code          string         `db:"code" json:"code"`
	Name          string         `db:"name" json:"name"`
	Credits       int            `db:"credits" json:"credits"`
	Semester      int            `db:"semester" json:"semester"`
	Programme     string         `db:"programme" json:"programme"`
	IsCore        bool           `db:"is_core" json:"is_core"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// ModuleFilter scopes module listings.
type ModuleFilter struct {
	Programme string
	Semester  int
}
