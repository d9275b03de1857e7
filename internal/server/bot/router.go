// Package bot routes inbound chat updates: top-level commands start wizards
// or answer directly, everything else is offered to the active dialog
// session. Any recognized command abandons whatever wizard was in flight.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/dialog"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/linktoken"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/proposals"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/votes"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/sessions"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/wizards"
)

const welcomeMessage = `Welcome to the Governance Bot! 🚀

This bot allows you to participate in on-chain governance for our project. Here are the main features:

🔗 Link your wallet
📝 Create proposals
🗳️ Vote on active proposals

To get started, use the /menu command to see available options.`

const menuMessage = `What would you like to do?

🔗 /linkwallet - Link your Solana wallet
📝 /createproposal - Create a new proposal
🗳️ /vote - Vote on an active proposal
📊 /proposals - View active proposals
📈 /results - View proposal results
❓ /help - Show help`

const helpMessage = "Available commands:\n/menu - Show main menu\n/linkwallet - Link your Solana wallet\n/unlinkwallet - Unlink your wallet\n/createproposal - Create a new proposal\n/vote - Vote on an existing proposal\n/proposals - List active proposals\n/results <proposal id> - Show vote totals"

const genericFailure = "Something went wrong. Please try again."

// Update is one inbound chat event, already flattened by the webhook layer.
type Update struct {
	ChatID string
	UserID string
	Text   string
}

// Router dispatches updates and replies through the Messenger.
type Router struct {
	engine      *dialog.Engine
	users       users.Repository
	proposals   proposals.Repository
	votes       votes.Repository
	sessions    sessions.Store
	issuer      *linktoken.Issuer
	linkBaseURL string
	messenger   Messenger
	logger      logging.Logger
	now         func() time.Time
}

type RouterParams struct {
	Engine      *dialog.Engine
	Users       users.Repository
	Proposals   proposals.Repository
	Votes       votes.Repository
	Sessions    sessions.Store
	Issuer      *linktoken.Issuer
	LinkBaseURL string
	Messenger   Messenger
	Logger      logging.Logger
}

func NewRouter(p RouterParams) *Router {
	return &Router{
		engine:      p.Engine,
		users:       p.Users,
		proposals:   p.Proposals,
		votes:       p.Votes,
		sessions:    p.Sessions,
		issuer:      p.Issuer,
		linkBaseURL: strings.TrimRight(p.LinkBaseURL, "/"),
		messenger:   p.Messenger,
		logger:      p.Logger.With("module", "bot"),
		now:         time.Now,
	}
}

// Handle processes one update end to end, replying through the messenger.
// Errors from reply delivery are returned; user-level failures are reported
// to the user and swallowed.
func (r *Router) Handle(ctx context.Context, u Update) error {
	reply := r.dispatch(ctx, u)
	if reply == "" {
		return nil
	}
	return r.messenger.SendMessage(ctx, u.ChatID, reply)
}

func (r *Router) dispatch(ctx context.Context, u Update) string {
	text := strings.TrimSpace(u.Text)
	if u.UserID == "" {
		return "Unable to identify user."
	}

	if strings.HasPrefix(text, "/") {
		return r.command(ctx, u.UserID, text)
	}

	reply, handled, err := r.engine.HandleInput(ctx, u.UserID, text)
	if err != nil {
		return genericFailure
	}
	if handled {
		return reply
	}
	return "I didn't understand that. Use /menu to see available options."
}

func (r *Router) command(ctx context.Context, userID, text string) string {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	// Telegram sends "/vote@BotName" in groups.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	// A new top-level command abandons any wizard in flight.
	r.engine.Cancel(userID)

	switch cmd {
	case "/start":
		return welcomeMessage
	case "/menu":
		return menuMessage
	case "/help":
		return helpMessage
	case "/linkwallet":
		return r.linkWallet(ctx, userID)
	case "/unlinkwallet":
		return r.unlinkWallet(ctx, userID)
	case "/createproposal":
		return r.enterWizard(ctx, wizards.CreateProposalName, userID)
	case "/vote":
		return r.enterWizard(ctx, wizards.VoteName, userID)
	case "/proposals":
		return r.listProposals(ctx)
	case "/results":
		if len(args) == 0 {
			return "Usage: /results <proposal id>"
		}
		return r.results(ctx, args[0])
	default:
		return "Unknown command. Use /menu to see available options."
	}
}

func (r *Router) enterWizard(ctx context.Context, name, userID string) string {
	reply, err := r.engine.Enter(ctx, name, userID)
	if err != nil {
		r.logger.Error(ctx, "wizard entry failed", "wizard", name, "user_id", userID, "error", err.Error())
		return genericFailure
	}
	return reply
}

func (r *Router) linkWallet(ctx context.Context, userID string) string {
	identity, err := r.users.GetByIdentity(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		r.logger.Error(ctx, "user lookup failed", "user_id", userID, "error", err.Error())
		return genericFailure
	}
	if err == nil && identity.Linked() {
		return "You already have a wallet linked. Use /unlinkwallet to unlink it first."
	}

	token, err := r.issuer.Generate(userID)
	if err != nil {
		r.logger.Error(ctx, "link token generation failed", "user_id", userID, "error", err.Error())
		return genericFailure
	}

	url := fmt.Sprintf("%s/wallet-link-app?token=%s", r.linkBaseURL, token)
	return "Open the link below to link your Solana wallet:\n" + url
}

func (r *Router) unlinkWallet(ctx context.Context, userID string) string {
	identity, err := r.users.GetByIdentity(ctx, userID)
	if errors.Is(err, common.ErrNotFound) || (err == nil && !identity.Linked()) {
		return "You don't have a wallet linked. Use /linkwallet to link one."
	}
	if err != nil {
		r.logger.Error(ctx, "user lookup failed", "user_id", userID, "error", err.Error())
		return genericFailure
	}

	if err := r.users.UpsertWallet(ctx, userID, ""); err != nil {
		r.logger.Error(ctx, "wallet unlink failed", "user_id", userID, "error", err.Error())
		return genericFailure
	}
	// Any live handshake session dies with the link.
	if err := r.sessions.DeleteByUser(ctx, userID); err != nil {
		r.logger.Warn(ctx, "session teardown on unlink failed", "user_id", userID, "error", err.Error())
	}
	return "Your wallet has been unlinked."
}

func (r *Router) listProposals(ctx context.Context) string {
	active, err := r.proposals.ListActive(ctx, r.now())
	if err != nil {
		r.logger.Error(ctx, "proposal listing failed", "error", err.Error())
		return genericFailure
	}
	if len(active) == 0 {
		return "There are no active proposals right now."
	}

	var b strings.Builder
	b.WriteString("Active proposals:\n")
	for _, p := range active {
		fmt.Fprintf(&b, "\n%s\n%s\nVote with: /vote then %s\n", p.Title, p.Description, p.ID)
	}
	return b.String()
}

func (r *Router) results(ctx context.Context, proposalID string) string {
	p, err := r.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, common.ErrNotFound) {
		return "Invalid proposal ID."
	}
	if err != nil {
		r.logger.Error(ctx, "proposal lookup failed", "proposal_id", proposalID, "error", err.Error())
		return genericFailure
	}

	all, err := r.votes.List(ctx, proposalID)
	if err != nil {
		r.logger.Error(ctx, "vote listing failed", "proposal_id", proposalID, "error", err.Error())
		return genericFailure
	}

	var yesWeight, noWeight int64
	var yesCount, noCount int
	for _, v := range all {
		if v.Vote {
			yesWeight += v.Weight
			yesCount++
		} else {
			noWeight += v.Weight
			noCount++
		}
	}

	return fmt.Sprintf("Results for %q (%s):\n\nYes: %d votes, weight %d\nNo: %d votes, weight %d",
		p.Title, p.EffectiveStatus(r.now()), yesCount, yesWeight, noCount, noWeight)
}
