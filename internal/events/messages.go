package events

import (
	"encoding/json"
	"time"
)

// ActivityEvent describes one state-changing user operation.
type ActivityEvent struct {
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	UserID       string                 `json:"user_id"`
	Changes      map[string]interface{} `json:"changes,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// NewActivityEvent creates an event stamped with the current time.
func NewActivityEvent(userID, action, resourceType, resourceID string, changes map[string]interface{}) *ActivityEvent {
	return &ActivityEvent{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UserID:       userID,
		Changes:      changes,
		Timestamp:    time.Now().UTC(),
	}
}

// RoutingKey is "<resource_type>.<action>", e.g. "transaction.create".
func (e *ActivityEvent) RoutingKey() string {
	return e.ResourceType + "." + e.Action
}

// ToJSON converts the event to JSON bytes
func (e *ActivityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ActivityEventFromJSON decodes an event published by Publish.
func ActivityEventFromJSON(data []byte) (*ActivityEvent, error) {
	var e ActivityEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
