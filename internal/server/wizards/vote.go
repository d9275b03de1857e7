package wizards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/dialog"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/metrics"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/proposals"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/votes"
)

// VoteName identifies the voting wizard.
const VoteName = "vote"

// Vote collects a proposal id and a yes/no choice, then records the vote
// weighted by the voter's balance at voting time, not at wizard entry.
type Vote struct {
	users     users.Repository
	proposals proposals.Repository
	votes     votes.Repository
	gate      *gate.Gate
	logger    logging.Logger
	now       func() time.Time
}

func NewVote(userRepo users.Repository, proposalRepo proposals.Repository, voteRepo votes.Repository, g *gate.Gate, logger logging.Logger) *Vote {
	return &Vote{
		users:     userRepo,
		proposals: proposalRepo,
		votes:     voteRepo,
		gate:      g,
		logger:    logger.With("wizard", VoteName),
		now:       time.Now,
	}
}

func (w *Vote) Name() string { return VoteName }

func (w *Vote) Precondition(ctx context.Context, userID string) (string, error) {
	_, deny, err := requireHolder(ctx, w.users, w.gate, userID, "You need to hold governance tokens to vote.")
	return deny, err
}

func (w *Vote) Steps() []dialog.Step {
	return []dialog.Step{
		{
			Prompt: "Please enter the proposal ID you want to vote on:",
			Handle: w.pickProposal,
		},
		{
			Prompt: "Please vote by replying with either 'yes' or 'no'.",
			Handle: w.castVote,
		},
	}
}

func (w *Vote) pickProposal(ctx context.Context, _, input string, draft map[string]string) (dialog.Result, error) {
	proposalID := strings.TrimSpace(input)

	p, err := w.proposals.GetByID(ctx, proposalID)
	if errors.Is(err, common.ErrNotFound) {
		return dialog.Result{Reply: "Invalid proposal ID.", Terminate: true}, nil
	}
	if err != nil {
		return dialog.Result{}, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	if p.EffectiveStatus(w.now()) != models.ProposalStatusActive {
		return dialog.Result{Reply: "This proposal is not active.", Terminate: true}, nil
	}

	draft["proposal_id"] = p.ID
	return dialog.Result{Reply: fmt.Sprintf("Proposal: %s", p.Title), Advance: true}, nil
}

// castVote is the terminal step: it re-reads the balance so the recorded
// weight reflects holdings at voting time, then upserts the vote.
func (w *Vote) castVote(ctx context.Context, userID, input string, draft map[string]string) (dialog.Result, error) {
	choice := strings.ToLower(strings.TrimSpace(input))
	if choice != "yes" && choice != "no" {
		return dialog.Result{Reply: `Invalid vote. Please vote "yes" or "no".`}, nil
	}

	identity, err := w.users.GetByIdentity(ctx, userID)
	if errors.Is(err, common.ErrNotFound) || (err == nil && !identity.Linked()) {
		// The wallet was unlinked mid-wizard.
		return dialog.Result{Reply: msgLinkWalletFirst, Terminate: true}, nil
	}
	if err != nil {
		return dialog.Result{}, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	_, weight := w.gate.IsAuthorized(ctx, identity.WalletAddress)

	err = w.votes.Record(ctx, &models.Vote{
		ProposalID: draft["proposal_id"],
		UserID:     userID,
		Vote:       choice == "yes",
		Weight:     weight,
	})
	if err != nil {
		w.logger.Error(ctx, "vote record failed", "proposal_id", draft["proposal_id"], "user_id", userID, "error", err.Error())
		return dialog.Result{Reply: "Failed to record your vote. Please try again.", Terminate: true}, nil
	}

	metrics.VotesRecorded.Inc()
	w.logger.Info(ctx, "vote recorded", "proposal_id", draft["proposal_id"], "user_id", userID, "weight", weight)
	return dialog.Result{Reply: "Your vote has been recorded successfully.", Terminate: true}, nil
}
