package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
	"github.com/sakif/skillshare/internal/repository"
)

// connectMessage is the fixed template for connection-request notifications.
const connectMessage = "%s wants to connect!"

// NetworkService implements the connection lifecycle:
//
//	NoRelation → RequestPending → {Connected | NoRelation}
//	Connected  → NoRelation (remove)
//
// A pending request is just a notification addressed to the receiver;
// accepting it establishes the connection pair and deletes the
// notification, rejecting it deletes the notification alone.
//
// Nothing stops the same pair from exchanging several requests, in either
// or both directions — each is an independent notification, and once the
// pair is connected the leftovers accept as no-ops or get rejected.
type NetworkService struct {
	notifications repository.NotificationRepository
	connections   repository.ConnectionRepository
	logger        *slog.Logger
}

func NewNetworkService(
	notifications repository.NotificationRepository,
	connections repository.ConnectionRepository,
	logger *slog.Logger,
) *NetworkService {
	return &NetworkService{
		notifications: notifications,
		connections:   connections,
		logger:        logger,
	}
}

// SendConnectionRequest creates a connection_request notification for the
// receiver. callerID must be the sender. senderName is denormalized into
// the notification as-is: it's the display name the receiver will see, and
// it stays frozen even if the sender renames later.
func (s *NetworkService) SendConnectionRequest(ctx context.Context, callerID, senderID, senderName, receiverID string) (*model.Notification, error) {
	if senderID != callerID {
		return nil, apperror.Forbidden("you can only send requests as yourself")
	}
	if receiverID == "" {
		return nil, apperror.ValidationFailed("receiverId", "receiver is required")
	}
	if senderName == "" {
		return nil, apperror.ValidationFailed("senderName", "sender name is required")
	}

	n := &model.Notification{
		RecipientID: receiverID,
		SenderID:    senderID,
		SenderName:  senderName,
		Message:     fmt.Sprintf(connectMessage, senderName),
		Type:        model.NotifConnectionRequest,
	}

	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("connection request sent",
		slog.String("sender", senderID),
		slog.String("receiver", receiverID),
	)
	return n, nil
}

// Notifications returns the caller's inbox, newest first.
func (s *NetworkService) Notifications(ctx context.Context, callerID, recipientID string) ([]model.Notification, error) {
	if recipientID != callerID {
		return nil, apperror.Forbidden("you can only read your own notifications")
	}
	return s.notifications.ListByRecipient(ctx, recipientID)
}

// AcceptRequest connects the caller with the request's sender and consumes
// the notification.
//
// The notification record, not the request body, is the authority on who
// the sender is. When two accepts race on the same notification, the store
// guarantees at most one consumes it; the loser sees NotFound and causes no
// connection change of its own.
func (s *NetworkService) AcceptRequest(ctx context.Context, callerID, notificationID string) error {
	if notificationID == "" {
		return apperror.ValidationFailed("notificationId", "notification ID is required")
	}

	n, err := s.notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.RecipientID != callerID {
		return apperror.Forbidden("this request is not addressed to you")
	}
	if n.SenderID == "" {
		return apperror.ValidationFailed("notificationId", "notification has no sender to connect with")
	}

	if err := s.connections.AcceptRequest(ctx, notificationID, callerID, n.SenderID); err != nil {
		return err
	}

	s.logger.Info("connection request accepted",
		slog.String("recipient", callerID),
		slog.String("sender", n.SenderID),
	)
	return nil
}

// RejectRequest deletes the notification without touching any connection
// state. NotFound when the notification is already gone.
func (s *NetworkService) RejectRequest(ctx context.Context, callerID, notificationID string) error {
	if notificationID == "" {
		return apperror.ValidationFailed("notificationId", "notification ID is required")
	}

	n, err := s.notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.RecipientID != callerID {
		return apperror.Forbidden("this notification is not addressed to you")
	}

	if err := s.notifications.DeleteNotification(ctx, notificationID); err != nil {
		return err
	}

	s.logger.Info("connection request rejected",
		slog.String("recipient", callerID),
		slog.String("notification", notificationID),
	)
	return nil
}

// RemoveConnection drops the connection between the caller and targetID.
// Both sides disappear at once (the pair is one record); removing a
// connection that doesn't exist is a silent no-op.
func (s *NetworkService) RemoveConnection(ctx context.Context, callerID, userID, targetID string) error {
	if userID != callerID {
		return apperror.Forbidden("you can only remove your own connections")
	}
	if targetID == "" {
		return apperror.ValidationFailed("targetId", "target is required")
	}

	if err := s.connections.RemoveConnection(ctx, userID, targetID); err != nil {
		return err
	}

	s.logger.Info("connection removed",
		slog.String("user", userID),
		slog.String("target", targetID),
	)
	return nil
}
