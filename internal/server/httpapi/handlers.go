package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mr-tron/base58"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/envelope"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/bot"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/handshake"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/linktoken"
)

type handler struct {
	handshake *handshake.Service
	gate      *gate.Gate
	bot       *bot.Router
	issuer    *linktoken.Issuer
	messenger bot.Messenger
	logger    logging.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handshakeKey publishes the backend's encryption public key so the
// connector page can derive the shared secret.
func (h *handler) handshakeKey(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"encryption_public_key": base58.Encode(h.handshake.EncryptionPublicKey()),
	})
}

type walletLinkRequest struct {
	Token    string          `json:"token"`
	Envelope json.RawMessage `json:"envelope"`
}

// walletLinkCallback receives the connector's envelope together with the
// link token that binds the attempt to a chat user. On success the user is
// notified in chat with their current balance.
func (h *handler) walletLinkCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req walletLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Token == "" || len(req.Envelope) == 0 {
		writeError(w, http.StatusBadRequest, "missing token or envelope")
		return
	}

	userID, err := h.issuer.UserID(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired link token")
		return
	}

	out, err := h.handshake.HandleEnvelope(ctx, userID, req.Envelope)
	if err != nil {
		h.logger.Warn(ctx, "wallet link attempt rejected", "user_id", userID, "error", err.Error())
		h.notify(ctx, userID, "Wallet linking failed. Please start over with /linkwallet.")

		switch {
		case errors.Is(err, common.ErrStoreUnavailable):
			writeError(w, http.StatusInternalServerError, "internal server error")
		case errors.Is(err, common.ErrSessionNotFound), errors.Is(err, common.ErrSessionExpired):
			writeError(w, http.StatusGone, "session not available")
		default:
			writeError(w, http.StatusBadRequest, "envelope rejected")
		}
		return
	}

	if out.Action == envelope.ActionConnect {
		_, balance := h.gate.IsAuthorized(ctx, out.WalletAddress)
		h.notify(ctx, userID, fmt.Sprintf("Wallet %s successfully linked to your account.\nYour current token balance is: %d", out.WalletAddress, balance))
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) notify(ctx context.Context, userID, text string) {
	if err := h.messenger.SendMessage(ctx, userID, text); err != nil {
		h.logger.Warn(ctx, "chat notification failed", "user_id", userID, "error", err.Error())
	}
}

// telegramUpdate is the subset of the Bot API update shape the router needs.
type telegramUpdate struct {
	Message *struct {
		Text string `json:"text"`
		From *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat *struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// telegramWebhook accepts Bot API updates. It always answers 200 so
// Telegram does not retry; user-level failures are reported in chat.
func (h *handler) telegramWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var upd telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "malformed update")
		return
	}
	if upd.Message == nil || upd.Message.From == nil || upd.Message.Chat == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	err := h.bot.Handle(ctx, bot.Update{
		ChatID: strconv.FormatInt(upd.Message.Chat.ID, 10),
		UserID: strconv.FormatInt(upd.Message.From.ID, 10),
		Text:   upd.Message.Text,
	})
	if err != nil {
		h.logger.Error(ctx, "update handling failed", "error", err.Error())
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
