package domain

import (
	"encoding/json"
	"time"
)

type EntityKind string

const (
	EntityProduct  EntityKind = "product"
	EntityCategory EntityKind = "category"
	EntityOrder    EntityKind = "order"
	EntityUser     EntityKind = "user"
	EntityRole     EntityKind = "role"
)

type AuditEvent string

const (
	AuditCreate AuditEvent = "create"
	AuditUpdate AuditEvent = "update"
	AuditDelete AuditEvent = "delete"
)

var sensitiveFields = []string{"password", "remember_token", "password_confirmation"}

// Audit is one change to one entity of any kind.
type Audit struct {
	ID         uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ActorID    string     `json:"actorId" gorm:"size:64;index"`
	EntityKind EntityKind `json:"entityKind" gorm:"size:32;not null;index:idx_audits_entity,priority:1"`
	EntityID   string     `json:"entityId" gorm:"size:64;not null;index:idx_audits_entity,priority:2"`
	Event      AuditEvent `json:"event" gorm:"size:16;not null;index"`
	OldValues  JSONMap    `json:"oldValues,omitempty" gorm:"type:json"`
	NewValues  JSONMap    `json:"newValues,omitempty" gorm:"type:json"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
}

// Snapshot flattens v into a field map with credential fields removed.
func Snapshot(v any) JSONMap {
	if v == nil {
		return nil
	}
	var m JSONMap
	switch t := v.(type) {
	case JSONMap:
		m = make(JSONMap, len(t))
		for k, val := range t {
			m[k] = val
		}
	case map[string]any:
		m = make(JSONMap, len(t))
		for k, val := range t {
			m[k] = val
		}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return nil
		}
	}
	for _, f := range sensitiveFields {
		delete(m, f)
	}
	return m
}
