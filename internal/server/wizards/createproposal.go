package wizards

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/dialog"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/metrics"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/proposals"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
)

// CreateProposalName identifies the proposal-creation wizard.
const CreateProposalName = "createProposal"

// CreateProposal collects title, description and voting period, then
// persists an active proposal and announces it to the group channel.
type CreateProposal struct {
	users     users.Repository
	proposals proposals.Repository
	gate      *gate.Gate
	announcer Announcer
	logger    logging.Logger
	now       func() time.Time
}

func NewCreateProposal(userRepo users.Repository, proposalRepo proposals.Repository, g *gate.Gate, announcer Announcer, logger logging.Logger) *CreateProposal {
	if announcer == nil {
		announcer = NopAnnouncer{}
	}
	return &CreateProposal{
		users:     userRepo,
		proposals: proposalRepo,
		gate:      g,
		announcer: announcer,
		logger:    logger.With("wizard", CreateProposalName),
		now:       time.Now,
	}
}

func (w *CreateProposal) Name() string { return CreateProposalName }

func (w *CreateProposal) Precondition(ctx context.Context, userID string) (string, error) {
	_, deny, err := requireHolder(ctx, w.users, w.gate, userID, "You need to hold governance tokens to create a proposal.")
	return deny, err
}

func (w *CreateProposal) Steps() []dialog.Step {
	return []dialog.Step{
		{
			Prompt: "Please enter the proposal title:",
			Handle: func(_ context.Context, _, input string, draft map[string]string) (dialog.Result, error) {
				title := strings.TrimSpace(input)
				if title == "" {
					return dialog.Result{Reply: "Please enter a valid title."}, nil
				}
				draft["title"] = title
				return dialog.Result{Advance: true}, nil
			},
		},
		{
			Prompt: "Please enter the proposal description:",
			Handle: func(_ context.Context, _, input string, draft map[string]string) (dialog.Result, error) {
				description := strings.TrimSpace(input)
				if description == "" {
					return dialog.Result{Reply: "Please enter a valid description."}, nil
				}
				draft["description"] = description
				return dialog.Result{Advance: true}, nil
			},
		},
		{
			Prompt: "Please enter the voting period in hours:",
			Handle: w.finish,
		},
	}
}

// finish validates the voting period and performs the terminal write. Store
// failures end the wizard with a user-facing message; they never leave the
// user stuck mid-dialog.
func (w *CreateProposal) finish(ctx context.Context, userID, input string, draft map[string]string) (dialog.Result, error) {
	hours, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || hours <= 0 {
		return dialog.Result{Reply: "Invalid voting period. Please enter a positive number of hours."}, nil
	}

	created, err := w.proposals.Create(ctx, &models.Proposal{
		Title:             draft["title"],
		Description:       draft["description"],
		CreatorID:         userID,
		VotingPeriodHours: hours,
		CreatedAt:         w.now(),
		Status:            models.ProposalStatusActive,
	})
	if err != nil {
		w.logger.Error(ctx, "proposal create failed", "user_id", userID, "error", err.Error())
		return dialog.Result{Reply: "Failed to create proposal. Please try again.", Terminate: true}, nil
	}

	metrics.ProposalsCreated.Inc()
	w.logger.Info(ctx, "proposal created", "proposal_id", created.ID, "user_id", userID)

	announcement := fmt.Sprintf("New proposal created!\n\nTitle: %s\n\nUse /vote %s to cast your vote.", created.Title, created.ID)
	if err := w.announcer.Announce(ctx, announcement); err != nil {
		// The proposal is already persisted; a failed announcement is only
		// logged.
		w.logger.Warn(ctx, "proposal announcement failed", "proposal_id", created.ID, "error", err.Error())
	}

	return dialog.Result{
		Reply:     fmt.Sprintf("Proposal created successfully! Proposal ID: %s", created.ID),
		Terminate: true,
	}, nil
}
