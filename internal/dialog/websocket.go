// Package dialog implements the interactive coaching endpoint for
// AI_DIALOG training. A websocket carries the conversation; replies
// come from the generative backend when configured and from canned
// coaching prompts otherwise.
package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/hanatore/api/internal/evaluate"
	"github.com/hanatore/api/internal/identity"
	"github.com/hanatore/api/internal/question"
)

// maxTurns bounds how much conversation history is replayed into each
// prompt.
const maxTurns = 10

// fallbackReplies are the coach's turns when no generative backend is
// available. Chosen by turn number, so the conversation still moves.
var fallbackReplies = []string{
	"なるほど。その点についてもう少し具体的に教えてください。",
	"いいですね。なぜそう考えたのか、理由を言葉にしてみましょう。",
	"具体的なエピソードや数字を交えて説明できますか？",
	"相手の立場から見ると、どう聞こえると思いますか？",
	"ここまでの話を一文でまとめるとどうなりますか？",
}

// wsMessage is the frame exchanged with the client.
type wsMessage struct {
	Type       string `json:"type"`
	QuestionID string `json:"questionId,omitempty"`
	Content    string `json:"content,omitempty"`
}

type turn struct {
	role string // "user" or "coach"
	text string
}

// Handler upgrades /ws/dialog connections and runs the conversation
// loop.
type Handler struct {
	gen           evaluate.TextGenerator
	catalog       *question.Catalog
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a dialog handler. gen may be nil, in which case
// every reply comes from the fallback set.
func NewHandler(gen evaluate.TextGenerator, catalog *question.Catalog, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		gen:           gen,
		catalog:       catalog,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for the websocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	slog.Info("Dialog connection request", "user_id", userID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept websocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "dialog ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.conversationLoop(ctx, ws, userID)
	slog.Info("Dialog session ended", "user_id", userID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("Dialog origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) conversationLoop(ctx context.Context, ws *websocket.Conn, userID string) {
	var (
		topic   string
		history []turn
	)

	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Websocket closed by client", "user_id", userID)
			} else {
				slog.Warn("Websocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.writeJSON(ws, wsMessage{Type: "error", Content: "invalid message"})
			continue
		}

		switch msg.Type {
		case "start":
			topic = h.openTopic(msg.QuestionID)
			history = history[:0]
			h.writeJSON(ws, wsMessage{Type: "reply", Content: topic})
		case "message":
			if strings.TrimSpace(msg.Content) == "" {
				h.writeJSON(ws, wsMessage{Type: "error", Content: "empty message"})
				continue
			}
			history = append(history, turn{role: "user", text: msg.Content})
			reply := h.reply(ctx, topic, history)
			history = append(history, turn{role: "coach", text: reply})
			if len(history) > maxTurns {
				history = history[len(history)-maxTurns:]
			}
			h.writeJSON(ws, wsMessage{Type: "reply", Content: reply})
		case "ping":
			h.writeJSON(ws, wsMessage{Type: "pong"})
		case "end":
			h.writeJSON(ws, wsMessage{Type: "ended"})
			return
		}
	}
}

// openTopic resolves the opening coach line for a question, or a
// generic opener when the id is unknown.
func (h *Handler) openTopic(questionID string) string {
	if q, ok := h.catalog.Get(questionID); ok {
		if q.Context != "" {
			return q.Context + "\n" + q.Title
		}
		return q.Title
	}
	return "今日は何について話しますか？テーマを教えてください。"
}

// reply produces the coach's next turn. Backend failures degrade to a
// canned reply so the conversation never stalls.
func (h *Handler) reply(ctx context.Context, topic string, history []turn) string {
	userTurns := 0
	for _, t := range history {
		if t.role == "user" {
			userTurns++
		}
	}
	fallback := fallbackReplies[(userTurns-1)%len(fallbackReplies)]

	if h.gen == nil {
		return fallback
	}

	text, err := h.gen.GenerateText(ctx, buildCoachPrompt(topic, history))
	if err != nil {
		slog.Warn("Dialog generation failed, using canned reply", "error", err)
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

// buildCoachPrompt renders the conversation so far for the backend.
func buildCoachPrompt(topic string, history []turn) string {
	var b strings.Builder
	b.WriteString("あなたは話し方トレーニングアプリの対話コーチです。\n")
	b.WriteString("ユーザーの発言に対して、言語化を深める短い質問やフィードバックを1-2文で返してください。\n\n")
	if topic != "" {
		fmt.Fprintf(&b, "## テーマ\n%s\n\n", topic)
	}
	b.WriteString("## 会話\n")
	for _, t := range history {
		label := "ユーザー"
		if t.role == "coach" {
			label = "コーチ"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.text)
	}
	b.WriteString("\nコーチ:")
	return b.String()
}

func (h *Handler) writeJSON(ws *websocket.Conn, v wsMessage) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Debug("Failed to encode dialog message", "error", err)
		return
	}
	if err := ws.Write(context.Background(), websocket.MessageText, data); err != nil {
		slog.Debug("Failed to write dialog message", "error", err)
	}
}
