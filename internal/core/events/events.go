package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeModelDefaultChanged    = "model.default_changed"
	EventTypeWidgetSettingsImported = "widget.settings_imported"
	EventTypeFollowUpNodeAdded      = "followup.node_added"
	EventTypeUserLoggedIn           = "user.logged_in"
)

// KnownTypes lists every event type the service publishes.
var KnownTypes = []string{
	EventTypeModelDefaultChanged,
	EventTypeWidgetSettingsImported,
	EventTypeFollowUpNodeAdded,
	EventTypeUserLoggedIn,
}

func NewEvent(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewModelDefaultChangedEvent(modelID, previousID string) BaseEvent {
	return NewEvent(EventTypeModelDefaultChanged, map[string]interface{}{
		"model_id":    modelID,
		"previous_id": previousID,
	})
}

func NewWidgetSettingsImportedEvent(tenantID, userID string) BaseEvent {
	return NewEvent(EventTypeWidgetSettingsImported, map[string]interface{}{
		"tenant_id": tenantID,
		"user_id":   userID,
	})
}

func NewFollowUpNodeAddedEvent(flowID, nodeID, nodeType string, position int) BaseEvent {
	return NewEvent(EventTypeFollowUpNodeAdded, map[string]interface{}{
		"flow_id":   flowID,
		"node_id":   nodeID,
		"node_type": nodeType,
		"position":  position,
	})
}

func NewUserLoggedInEvent(userID, email string) BaseEvent {
	return NewEvent(EventTypeUserLoggedIn, map[string]interface{}{
		"user_id": userID,
		"email":   email,
	})
}
