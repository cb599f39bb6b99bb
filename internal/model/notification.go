package model

import "time"

// Notification types.
const (
	NotifConnectionRequest = "connection_request"
	NotifProjectInvite     = "project_invite"
	NotifGeneral           = "general"
)

// Notification statuses. Status is stored but no operation currently
// transitions unread → read; a notification lives until it is deleted
// (accept or reject).
const (
	NotifUnread = "unread"
	NotifRead   = "read"
)

// Notification is a transient message addressed to one account. Connection
// requests are the main use: the request IS the notification, and accepting
// or rejecting it deletes the record.
//
// SenderName is a denormalized copy of the sender's display name, captured
// when the notification is created. If the sender renames later, existing
// notifications keep the old name.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient"`
	SenderID    string    `json:"sender"`
	SenderName  string    `json:"senderName"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
