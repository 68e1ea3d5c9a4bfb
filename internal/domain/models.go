// Package domain defines the persistence models for query records. These
// types are mapped with GORM and form the core data layer of the insight
// backend.
package domain

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Query represents one free-form question about a Web3/GitHub entity together
// with its resolution state. It is the single source of truth for whether a
// question has already been answered: once Answer is non-nil it is never
// changed again.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - OwnerID: identifier of the submitting user; nil for anonymous queries.
//   - Text: the raw query text as submitted.
//   - Keyword: canonical identifier extracted at classification time
//     (address, "owner/repo", or username); nil until classified.
//   - Answer: final generated answer; nil until the resolution completes.
//     Written exactly once (conditional update, first writer wins).
//   - Citations: JSON-encoded list of citation references backing the answer.
//   - Pin: marks globally shared queries surfaced to anonymous visitors.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (deletion is an external concern).
type Query struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	OwnerID   *string        `json:"owner_id,omitempty" gorm:"type:varchar(64);index:idx_owner_queries"`
	Text      string         `json:"query"      gorm:"column:query;type:varchar(255);not null"`
	Keyword   *string        `json:"keyword,omitempty" gorm:"type:varchar(255)"`
	Answer    *string        `json:"answer,omitempty"  gorm:"type:text"`
	Citations string         `json:"-"          gorm:"type:text;not null;default:'[]'"`
	Pin       bool           `json:"pin"        gorm:"not null;default:false;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Query.
func (Query) TableName() string { return "queries" }

// Answered reports whether the record already carries a final answer.
// An empty string does not count: the answer write is all-or-nothing.
func (q *Query) Answered() bool {
	return q.Answer != nil && *q.Answer != ""
}

// CitationList decodes the stored citation references. A malformed or empty
// column yields an empty slice rather than an error; citations are advisory.
func (q *Query) CitationList() []string {
	if q.Citations == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(q.Citations), &out); err != nil {
		return []string{}
	}
	return out
}

// EncodeCitations serializes refs into the Citations column format.
func EncodeCitations(refs []string) string {
	if len(refs) == 0 {
		return "[]"
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "[]"
	}
	return string(b)
}
