package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/connector"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/cryptox"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/proof"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/bot"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/dialog"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/handshake"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/linktoken"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/sessions"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/wizards"
)

type fakeUsers struct {
	wallets map[string]string
}

func (f *fakeUsers) GetByIdentity(_ context.Context, userID string) (*models.WalletIdentity, error) {
	addr, ok := f.wallets[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &models.WalletIdentity{UserID: userID, WalletAddress: addr}, nil
}

func (f *fakeUsers) UpsertWallet(_ context.Context, userID, walletAddress string) error {
	f.wallets[userID] = walletAddress
	return nil
}

type fakeProposals struct{}

func (fakeProposals) Create(_ context.Context, p *models.Proposal) (*models.Proposal, error) {
	out := *p
	out.ID = "prop-1"
	return &out, nil
}

func (fakeProposals) GetByID(context.Context, string) (*models.Proposal, error) {
	return nil, common.ErrNotFound
}

func (fakeProposals) ListActive(context.Context, time.Time) ([]models.Proposal, error) {
	return nil, nil
}

type fakeVotes struct{}

func (fakeVotes) Record(context.Context, *models.Vote) error          { return nil }
func (fakeVotes) List(context.Context, string) ([]models.Vote, error) { return nil, nil }

type fakeOracle struct {
	balances map[string]int64
}

func (f *fakeOracle) GetTokenBalance(_ context.Context, wallet string) (int64, error) {
	return f.balances[wallet], nil
}

type captureMessenger struct {
	sent []string
}

func (m *captureMessenger) SendMessage(_ context.Context, _, text string) error {
	m.sent = append(m.sent, text)
	return nil
}

type apiFixture struct {
	server    *httptest.Server
	handshake *handshake.Service
	issuer    *linktoken.Issuer
	users     *fakeUsers
	oracle    *fakeOracle
	messenger *captureMessenger
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	f := &apiFixture{
		users:     &fakeUsers{wallets: map[string]string{}},
		oracle:    &fakeOracle{balances: map[string]int64{}},
		messenger: &captureMessenger{},
	}

	issuer, err := linktoken.NewIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	f.issuer = issuer

	verifier := proof.NewVerifier(proof.DefaultFreshnessWindow, proof.NewMemoryReplayCache(), log)
	store := sessions.NewMemoryStore(0)
	svc, err := handshake.NewService(store, verifier, f.users, &handshake.LogSubmitter{Logger: log}, time.Minute, log)
	require.NoError(t, err)
	f.handshake = svc

	g := gate.New(f.oracle, log)
	engine := dialog.NewEngine(log)
	engine.Register(wizards.NewCreateProposal(f.users, fakeProposals{}, g, nil, log))
	engine.Register(wizards.NewVote(f.users, fakeProposals{}, fakeVotes{}, g, log))

	router := bot.NewRouter(bot.RouterParams{
		Engine:      engine,
		Users:       f.users,
		Proposals:   fakeProposals{},
		Votes:       fakeVotes{},
		Sessions:    store,
		Issuer:      issuer,
		LinkBaseURL: "https://bot.example.com",
		Messenger:   f.messenger,
		Logger:      log,
	})

	f.server = httptest.NewServer(NewRouter(Params{
		Handshake: svc,
		Gate:      g,
		Bot:       router,
		Issuer:    issuer,
		Messenger: f.messenger,
		Logger:    log,
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *apiFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandshakeKey(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.server.URL + "/api/handshake-key")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	key, err := base58.Decode(body["encryption_public_key"])
	require.NoError(t, err)
	assert.Len(t, key, cryptox.KeySize)
}

func TestWalletLinkCallback_Success(t *testing.T) {
	f := newAPIFixture(t)

	w, err := connector.NewWallet()
	require.NoError(t, err)
	c, err := connector.New(f.handshake.EncryptionPublicKey())
	require.NoError(t, err)
	env, err := c.Connect(w, "42", time.Now())
	require.NoError(t, err)

	f.oracle.balances[w.Address()] = 1234
	token, err := f.issuer.Generate("42")
	require.NoError(t, err)

	resp := f.postJSON(t, "/api/wallet-link-callback", map[string]any{
		"token":    token,
		"envelope": env,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, w.Address(), f.users.wallets["42"])
	require.NotEmpty(t, f.messenger.sent)
	assert.Contains(t, f.messenger.sent[0], "successfully linked")
	assert.Contains(t, f.messenger.sent[0], "1234")
}

func TestWalletLinkCallback_BadToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/api/wallet-link-callback", map[string]any{
		"token":    "not.a.jwt",
		"envelope": map[string]string{"dapp_encryption_public_key": "x", "nonce": "x", "payload": "x"},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.users.wallets)
}

func TestWalletLinkCallback_BadEnvelope(t *testing.T) {
	f := newAPIFixture(t)

	token, err := f.issuer.Generate("42")
	require.NoError(t, err)

	resp := f.postJSON(t, "/api/wallet-link-callback", map[string]any{
		"token":    token,
		"envelope": map[string]string{"dapp_encryption_public_key": "x", "nonce": "x", "payload": "x"},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.users.wallets)
	// The user is told to retry from the beginning.
	require.NotEmpty(t, f.messenger.sent)
	assert.Contains(t, f.messenger.sent[0], "start over")
}

func TestTelegramWebhook(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/telegram/webhook", map[string]any{
		"message": map[string]any{
			"text": "/start",
			"from": map[string]any{"id": 42},
			"chat": map[string]any{"id": 42},
		},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, f.messenger.sent)
	assert.Contains(t, f.messenger.sent[0], "Welcome to the Governance Bot!")
}

func TestTelegramWebhook_IgnoresNonMessageUpdates(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.postJSON(t, "/telegram/webhook", map[string]any{"edited_message": map[string]any{}})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, f.messenger.sent)
}

func TestWalletLinkApp(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.server.URL + "/wallet-link-app?token=abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "Link Your Wallet"))
}
