package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"squadfinder_server/metrics"
	"squadfinder_server/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newChatController() *ChatController {
	log := zerolog.Nop()
	swipes := services.NewSwipeService(stubDynamo{}, log)
	matches := services.NewMatchService(stubDynamo{}, swipes, nil, nil, metrics.Nop{}, log)
	messages := services.NewMessageService(stubDynamo{}, matches, metrics.Nop{}, log)
	return NewChatController(services.NewChatService(messages, metrics.Nop{}, log))
}

func TestHandleSendMessageRejectsMissingFields(t *testing.T) {
	cc := newChatController()

	req := httptest.NewRequest("POST", "/api/chat/message", strings.NewReader(`{"sender_id":"alice"}`))
	w := httptest.NewRecorder()
	cc.HandleSendMessage(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSendMessageRejectsSelfChat(t *testing.T) {
	cc := newChatController()

	body := `{"sender_id":"alice","receiver_id":"alice","body":"hi"}`
	req := httptest.NewRequest("POST", "/api/chat/message", strings.NewReader(body))
	w := httptest.NewRecorder()
	cc.HandleSendMessage(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSendMessageWithoutMatchIsForbidden(t *testing.T) {
	cc := newChatController()

	body := `{"sender_id":"alice","receiver_id":"bob","body":"hi"}`
	req := httptest.NewRequest("POST", "/api/chat/message", strings.NewReader(body))
	w := httptest.NewRecorder()
	cc.HandleSendMessage(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestHandlePollRejectsBadCursor(t *testing.T) {
	cc := newChatController()

	req := httptest.NewRequest("GET", "/api/chat/poll?sender_id=alice&receiver_id=bob&cursor=abc", nil)
	w := httptest.NewRecorder()
	cc.HandlePoll(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePollWithoutMatchIsForbidden(t *testing.T) {
	cc := newChatController()

	req := httptest.NewRequest("GET", "/api/chat/poll?sender_id=alice&receiver_id=bob", nil)
	w := httptest.NewRecorder()
	cc.HandlePoll(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
