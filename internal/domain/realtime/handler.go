package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

// WebSocket constants
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	lookupTimeout  = 5 * time.Second
)

var errTopicForbidden = errors.New("hostel not accessible")

// HostelLookup resolves a hostel as the caller sees it. The backend only
// returns hostels the token's owner may manage.
type HostelLookup interface {
	GetHostel(ctx context.Context, id string) (*hostelapi.Hostel, error)
}

type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	hostels  HostelLookup
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, jwtService *jwt.Service, hostels HostelLookup, allowedOrigins []string) *Handler {
	return &Handler{
		hub:     hub,
		jwt:     jwtService,
		hostels: hostels,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 || origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// ServeWS handles GET /ws?token=...&hostel_id=a,b
// Browsers cannot set headers on WebSocket upgrades, so the token may come
// from the query string. Without hostel_id a super admin receives every
// hostel and an admin starts with no subscriptions.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(w, "Authentication required")
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			response.Error(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
		} else {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
		}
		return
	}
	if !jwt.IsAdmin(claims.Role) {
		response.Forbidden(w, "Insufficient permissions")
		return
	}

	client := &Connection{
		UserID: claims.UserID,
		Send:   make(chan []byte, 64),
		role:   claims.Role,
		token:  token,
	}

	topics := splitTopics(r.URL.Query().Get("hostel_id"))
	if len(topics) == 0 && claims.Role == jwt.RoleSuperAdmin {
		topics = []string{TopicAll}
	}
	for _, topic := range topics {
		if err := h.authorize(r.Context(), client, topic); err != nil {
			if errors.Is(err, errTopicForbidden) {
				response.Forbidden(w, "No access to hostel "+topic)
				return
			}
			log.Error().Err(err).Str("hostel_id", topic).Msg("Hostel lookup failed")
			response.ServiceUnavailable(w, "Hostel lookup failed")
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	client.Conn = conn

	h.hub.Register(client)
	for _, topic := range topics {
		h.hub.Subscribe(client, topic)
	}

	go h.wsReader(client)
	go h.wsWriter(client)
}

func splitTopics(raw string) []string {
	var topics []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			topics = append(topics, part)
		}
	}
	return topics
}

// authorize reports whether client may join topic. Only super admins may
// join TopicAll; admins may join hostels the backend returns for their token.
func (h *Handler) authorize(ctx context.Context, client *Connection, topic string) error {
	if client.role == jwt.RoleSuperAdmin {
		return nil
	}
	if topic == TopicAll || h.hostels == nil {
		return errTopicForbidden
	}

	ctx, cancel := context.WithTimeout(hostelapi.WithToken(ctx, client.token), lookupTimeout)
	defer cancel()
	if _, err := h.hostels.GetHostel(ctx, topic); err != nil {
		switch hostelapi.KindOf(err) {
		case hostelapi.KindNotFound, hostelapi.KindForbidden:
			return errTopicForbidden
		}
		return err
	}
	return nil
}

// reply queues a control message; it is dropped when the buffer is full.
func reply(client *Connection, v map[string]string) {
	msg, _ := json.Marshal(v)
	select {
	case client.Send <- msg:
	default:
	}
}

// wsReader handles subscribe/unsubscribe messages until the client goes away.
func (h *Handler) wsReader(client *Connection) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", client.UserID).Msg("WebSocket read error")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.HostelID == "" {
			continue
		}

		switch msg.Type {
		case "subscribe":
			if err := h.authorize(context.Background(), client, msg.HostelID); err != nil {
				code := "FORBIDDEN"
				if !errors.Is(err, errTopicForbidden) {
					code = "UNAVAILABLE"
					log.Error().Err(err).Str("hostel_id", msg.HostelID).Msg("Hostel lookup failed")
				}
				reply(client, map[string]string{"type": string(EventError), "hostel_id": msg.HostelID, "code": code})
				continue
			}
			h.hub.Subscribe(client, msg.HostelID)
			reply(client, map[string]string{"type": string(EventSubscribed), "hostel_id": msg.HostelID})
		case "unsubscribe":
			h.hub.Unsubscribe(client, msg.HostelID)
		}
	}
}

func (h *Handler) wsWriter(client *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
