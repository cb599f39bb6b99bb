package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/skillshare/internal/auth"
	"github.com/sakif/skillshare/internal/service"
)

// NetworkHandler covers the connection lifecycle: request, inbox, accept,
// reject, remove.
type NetworkHandler struct {
	network *service.NetworkService
	logger  *slog.Logger
}

func NewNetworkHandler(network *service.NetworkService, logger *slog.Logger) *NetworkHandler {
	return &NetworkHandler{
		network: network,
		logger:  logger,
	}
}

// HandleSendRequest creates a connection request notification for the
// receiver.
//
// HTTP: POST /api/auth/send-request (RequireAuth)
// Body: {"senderId": "...", "senderName": "...", "receiverId": "..."}
func (h *NetworkHandler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())

	var req struct {
		SenderID   string `json:"senderId"`
		SenderName string `json:"senderName"`
		ReceiverID string `json:"receiverId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	notification, err := h.network.SendConnectionRequest(r.Context(), callerID, req.SenderID, req.SenderName, req.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Request sent!",
		"notification": notification,
	})
}

// HandleNotifications returns the caller's inbox, newest first.
//
// HTTP: GET /api/auth/notifications/{userId} (RequireAuth)
func (h *NetworkHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())
	recipientID := r.PathValue("userId")

	notifications, err := h.network.Notifications(r.Context(), callerID, recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// HandleAcceptRequest accepts a pending connection request: both accounts
// become connected and the notification is consumed.
//
// HTTP: POST /api/auth/accept-request (RequireAuth)
// Body: {"notificationId": "..."}
func (h *NetworkHandler) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())

	var req struct {
		NotificationID string `json:"notificationId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.network.AcceptRequest(r.Context(), callerID, req.NotificationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Connection accepted!"})
}

// HandleRejectRequest declines a pending request. The notification is
// deleted; no connection state changes.
//
// HTTP: DELETE /api/auth/reject-request/{notificationId} (RequireAuth)
func (h *NetworkHandler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())
	notificationID := r.PathValue("notificationId")

	if err := h.network.RejectRequest(r.Context(), callerID, notificationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Request declined"})
}

// HandleRemoveConnection disconnects two accounts. One call removes the
// relation for both sides.
//
// HTTP: POST /api/auth/remove-connection (RequireAuth)
// Body: {"userId": "...", "targetId": "..."}
func (h *NetworkHandler) HandleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.AccountIDFromContext(r.Context())

	var req struct {
		UserID   string `json:"userId"`
		TargetID string `json:"targetId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.network.RemoveConnection(r.Context(), callerID, req.UserID, req.TargetID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Connection removed successfully"})
}
