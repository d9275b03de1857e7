// Package dialog implements a generic multi-step wizard engine: each wizard
// is an ordered list of step handlers working on a per-user draft, entered
// through a precondition check and left by an explicit terminate. The engine
// serializes processing per user so two inputs from the same user never
// interleave.
package dialog

import (
	"context"
	"fmt"
	"sync"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/metrics"
)

// Result is what a step handler reports back to the engine. Advance moves to
// the next step, Terminate ends the wizard; neither set means the input was
// invalid and the step repeats with Reply as the re-prompt.
type Result struct {
	Reply     string
	Advance   bool
	Terminate bool
}

// StepFunc handles one user input against the wizard's draft. Handlers may
// block on I/O; the engine holds only that user's lock while they run.
type StepFunc func(ctx context.Context, userID, input string, draft map[string]string) (Result, error)

// Step is one stop in a wizard. Prompt is sent when the step becomes
// current; Handle consumes the user's next input.
type Step struct {
	Prompt string
	Handle StepFunc
}

// Wizard is a named ordered step sequence with an entry precondition.
type Wizard interface {
	Name() string

	// Precondition runs before any session is allocated. A non-empty deny
	// message rejects entry with that reply and creates no session; an
	// error aborts entry entirely.
	Precondition(ctx context.Context, userID string) (deny string, err error)

	Steps() []Step
}

type session struct {
	wizard Wizard
	step   int
	draft  map[string]string
}

// Engine routes user inputs to their active wizard session.
type Engine struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	active  map[string]*session
	wizards map[string]Wizard
	logger  logging.Logger
}

func NewEngine(logger logging.Logger) *Engine {
	return &Engine{
		locks:   make(map[string]*sync.Mutex),
		active:  make(map[string]*session),
		wizards: make(map[string]Wizard),
		logger:  logger.With("module", "dialog"),
	}
}

func (e *Engine) Register(w Wizard) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wizards[w.Name()] = w
}

// userLock returns the per-user mutex, creating it on first use. All wizard
// progress for one user happens under this lock.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

func (e *Engine) getWizard(name string) (Wizard, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := e.wizards[name]
	return w, ok
}

func (e *Engine) getSession(userID string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active[userID]
}

func (e *Engine) setSession(userID string, s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s == nil {
		delete(e.active, userID)
		return
	}
	e.active[userID] = s
}

// Active reports whether the user is currently inside a wizard.
func (e *Engine) Active(userID string) bool {
	return e.getSession(userID) != nil
}

// Cancel discards the user's session, if any. Starting a new top-level
// command implicitly abandons whatever wizard was in flight.
func (e *Engine) Cancel(userID string) {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()
	e.setSession(userID, nil)
}

// Enter starts the named wizard for the user. The precondition runs first;
// only when it passes is a session allocated and the first prompt returned.
// Any prior session for the user is replaced.
func (e *Engine) Enter(ctx context.Context, wizardName, userID string) (string, error) {
	w, ok := e.getWizard(wizardName)
	if !ok {
		return "", fmt.Errorf("unknown wizard %q", wizardName)
	}

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	deny, err := w.Precondition(ctx, userID)
	if err != nil {
		metrics.WizardEntries.WithLabelValues(wizardName, "error").Inc()
		return "", err
	}
	if deny != "" {
		metrics.WizardEntries.WithLabelValues(wizardName, "denied").Inc()
		e.logger.Info(ctx, "wizard entry denied", "wizard", wizardName, "user_id", userID)
		return deny, nil
	}

	e.setSession(userID, &session{wizard: w, draft: make(map[string]string)})
	metrics.WizardEntries.WithLabelValues(wizardName, "ok").Inc()
	return w.Steps()[0].Prompt, nil
}

// HandleInput feeds one line of user input to the active session. The
// boolean reports whether a session consumed the input; false means the
// caller should treat the text as a plain message.
func (e *Engine) HandleInput(ctx context.Context, userID, input string) (string, bool, error) {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	s := e.getSession(userID)
	if s == nil {
		return "", false, nil
	}

	steps := s.wizard.Steps()
	res, err := steps[s.step].Handle(ctx, userID, input, s.draft)
	if err != nil {
		// The session is torn down even on failure so the user is never
		// stuck mid-wizard.
		e.setSession(userID, nil)
		metrics.WizardCompletions.WithLabelValues(s.wizard.Name(), "error").Inc()
		e.logger.Error(ctx, "wizard step failed", "wizard", s.wizard.Name(), "user_id", userID, "step", s.step, "error", err.Error())
		return "", true, err
	}

	if res.Terminate {
		e.setSession(userID, nil)
		metrics.WizardCompletions.WithLabelValues(s.wizard.Name(), "done").Inc()
		return res.Reply, true, nil
	}

	if !res.Advance {
		// Invalid input: same step, draft untouched by contract.
		return res.Reply, true, nil
	}

	s.step++
	if s.step >= len(steps) {
		// A well-formed wizard terminates from its last step explicitly.
		e.setSession(userID, nil)
		metrics.WizardCompletions.WithLabelValues(s.wizard.Name(), "done").Inc()
		return res.Reply, true, nil
	}

	reply := steps[s.step].Prompt
	if res.Reply != "" {
		reply = res.Reply + "\n\n" + reply
	}
	return reply, true, nil
}
