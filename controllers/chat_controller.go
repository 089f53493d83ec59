package controllers

import (
	"net/http"
	"strconv"

	"squadfinder_server/models"
	"squadfinder_server/services"
)

// ChatController handles message sending and polling.
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController creates a new ChatController instance.
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

type sendMessageRequest struct {
	SenderID   string `json:"sender_id" validate:"required"`
	ReceiverID string `json:"receiver_id" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

// HandleSendMessage serves POST /api/chat/message. The response carries the
// stored message with its server-assigned sequence.
func (cc *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	message, err := cc.ChatService.Send(r.Context(), req.SenderID, req.ReceiverID, req.Body)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, message)
}

// HandlePoll serves GET /api/chat/poll?sender_id=U&receiver_id=V&cursor=N.
// Clients re-poll on a fixed interval presenting the returned cursor.
func (cc *ChatController) HandlePoll(w http.ResponseWriter, r *http.Request) {
	senderID := r.URL.Query().Get("sender_id")
	receiverID := r.URL.Query().Get("receiver_id")

	cursor := int64(0)
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, models.NewValidationError("cursor must be an integer"))
			return
		}
		cursor = parsed
	}

	result, err := cc.ChatService.Poll(r.Context(), senderID, receiverID, cursor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
