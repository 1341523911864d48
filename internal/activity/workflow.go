package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rowmatch/internal/availability"
	"rowmatch/internal/match"
	"rowmatch/internal/notification"
	"rowmatch/internal/rowing"

	"github.com/google/uuid"
)

// Ledger is the part of the match store the workflow needs.
type Ledger interface {
	ExistsFor(ctx context.Context, activityID, userID string) (bool, error)
	Find(ctx context.Context, activityID, userID string) (*match.Match, error)
	Save(ctx context.Context, m *match.Match) error
	Delete(ctx context.Context, id string) error
}

// CandidateSource resolves the profile of a user being accepted.
type CandidateSource interface {
	Candidate(ctx context.Context, userID string) (Candidate, error)
}

// Outcome is the result of a transition: the response text and the notifications to send after commit.
type Outcome struct {
	Message string
	Events  []notification.Event
}

// Workflow applies sign-up state transitions to an in-memory Activity.
// The caller loads and saves the activity; match rows go through the injected Ledger.
type Workflow struct {
	certificates rowing.CertificateTable
	now          func() time.Time
	newID        func() string
}

func NewWorkflow(certificates rowing.CertificateTable) *Workflow {
	if certificates == nil {
		certificates = rowing.DefaultCertificates()
	}
	return &Workflow{
		certificates: certificates,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Create builds a new activity owned by owner.
func (w *Workflow) Create(owner string, req CreateActivityRequest) (*Activity, Outcome, error) {
	if req.Start.Before(w.now()) {
		return nil, Outcome{}, ErrInThePast
	}
	positions, err := validPositions(req.Positions)
	if err != nil {
		return nil, Outcome{}, err
	}
	if len(positions) == 0 {
		return nil, Outcome{}, ErrNoPositions
	}

	a := &Activity{
		ID:         w.newID(),
		Owner:      owner,
		Name:       req.Name,
		Location:   req.Location,
		BoatType:   req.BoatType,
		Kind:       req.Type,
		Start:      req.Start,
		Positions:  positions,
		Applicants: []string{},
	}

	switch req.Type {
	case KindTraining:
		if req.Gender != "" || req.Organisation != "" || req.RequiresCompetitive != nil {
			return nil, Outcome{}, ErrCompetitionFieldsOnly
		}
	case KindCompetition:
		if req.Gender != "" && !req.Gender.Valid() {
			return nil, Outcome{}, ErrInvalidGender
		}
		requiresCompetitive := true
		if req.RequiresCompetitive != nil {
			requiresCompetitive = *req.RequiresCompetitive
		}
		a.Competition = &Competition{
			Gender:              req.Gender,
			Organisation:        req.Organisation,
			RequiresCompetitive: requiresCompetitive,
		}
	default:
		return nil, Outcome{}, ErrUnknownKind
	}

	return a, Outcome{Message: fmt.Sprintf("Activity %s was created successfully !", a.ID)}, nil
}

func (w *Workflow) SignUp(a *Activity, req SignUpRequest) (Outcome, error) {
	if a.HasApplicant(req.UserID) {
		return Outcome{}, ErrAlreadyApplied
	}
	if !availability.IsAvailable(a.Start, req.Availability) {
		return Outcome{}, ErrNotAvailable
	}

	switch a.Kind {
	case KindTraining:
	case KindCompetition:
		if err := checkCompetition(a.Competition, req); err != nil {
			return Outcome{}, err
		}
	default:
		return Outcome{}, ErrUnknownKind
	}

	a.addApplicant(req.UserID)

	msg := fmt.Sprintf("User %s signed up for activity : %s", req.UserID, a.ID)
	if !a.Full() {
		return Outcome{Message: msg}, nil
	}

	return Outcome{
		Message: msg + " but since activity was full the user is currently in the waitlist.",
		Events:  []notification.Event{{UserID: req.UserID, Status: notification.StatusActivityFull, ActivityID: a.ID}},
	}, nil
}

func checkCompetition(c *Competition, req SignUpRequest) error {
	if c == nil {
		return nil
	}
	// every competition entrant must be competitive; RequiresCompetitive is informational
	if !req.Competitive {
		return ErrNotCompetitive
	}
	if c.Gender != "" && c.Gender != req.Gender {
		return ErrGenderMismatch
	}
	if c.Organisation != "" && c.Organisation != req.Organisation {
		return ErrOrganisationMismatch
	}
	return nil
}

func (w *Workflow) Accept(ctx context.Context, ledger Ledger, candidates CandidateSource, a *Activity, requester string, sel Selection) (Outcome, error) {
	if requester != a.Owner {
		return Outcome{}, ErrNotOwnerAccept
	}
	if !a.HasApplicant(sel.UserID) {
		return Outcome{}, ErrNotApplied
	}
	matched, err := ledger.ExistsFor(ctx, a.ID, sel.UserID)
	if err != nil {
		return Outcome{}, err
	}
	if matched {
		return Outcome{}, ErrAlreadyMatched
	}
	if !a.Positions.Contains(sel.Position) {
		return Outcome{}, ErrPositionUnavailable
	}

	c, err := candidates.Candidate(ctx, sel.UserID)
	if err != nil {
		return Outcome{}, err
	}
	if !rowing.Positions(c.Positions).Contains(sel.Position) {
		return Outcome{}, ErrPositionNotPreferred
	}
	if sel.Position == rowing.PositionCox && !w.certificates.Qualifies(a.BoatType, c.CoxCertificates) {
		return Outcome{}, ErrMissingCertificate
	}

	a.Positions, _ = a.Positions.RemoveFirst(sel.Position)

	m := &match.Match{
		ID:           w.newID(),
		ActivityID:   a.ID,
		UserID:       sel.UserID,
		Position:     sel.Position,
		Gender:       c.Gender,
		Competitive:  c.Competitive,
		Organisation: c.Organisation,
		Availability: c.Availability,
	}
	if err := ledger.Save(ctx, m); err != nil {
		return Outcome{}, fmt.Errorf("save match: %w", err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "User %s is accepted successfully to the activity with id %s", sel.UserID, a.ID)
	events := []notification.Event{{UserID: sel.UserID, Status: notification.StatusAccepted, ActivityID: a.ID}}

	if a.Full() {
		for _, applicant := range a.Applicants {
			if applicant == sel.UserID {
				continue
			}
			matched, err := ledger.ExistsFor(ctx, a.ID, applicant)
			if err != nil {
				return Outcome{}, err
			}
			if matched {
				continue
			}
			events = append(events, notification.Event{UserID: applicant, Status: notification.StatusActivityFull, ActivityID: a.ID})
			fmt.Fprintf(&msg, "\nUser %s is currently in the waitlist since the activity was full.", applicant)
		}
	}

	return Outcome{Message: msg.String(), Events: events}, nil
}

// Reject frees no position: a rejected user never held one.
func (w *Workflow) Reject(ctx context.Context, ledger Ledger, a *Activity, requester, userID string) (Outcome, error) {
	if requester != a.Owner {
		return Outcome{}, ErrNotOwnerReject
	}
	if !a.HasApplicant(userID) {
		return Outcome{}, ErrNotApplied
	}
	matched, err := ledger.ExistsFor(ctx, a.ID, userID)
	if err != nil {
		return Outcome{}, err
	}
	if matched {
		return Outcome{}, ErrAlreadyMatched
	}

	a.removeApplicant(userID)

	return Outcome{
		Message: fmt.Sprintf("User %s is rejected successfully", userID),
		Events:  []notification.Event{{UserID: userID, Status: notification.StatusRejected, ActivityID: a.ID}},
	}, nil
}

// SignOff returns the user's matched position to the pool.
func (w *Workflow) SignOff(ctx context.Context, ledger Ledger, a *Activity, userID string) (Outcome, error) {
	m, err := findMatch(ctx, ledger, a.ID, userID)
	if err != nil {
		return Outcome{}, err
	}

	applied := a.removeApplicant(userID)
	if !applied && m == nil {
		return Outcome{}, ErrNotSignedUp
	}

	if m != nil {
		if err := ledger.Delete(ctx, m.ID); err != nil {
			return Outcome{}, fmt.Errorf("delete match: %w", err)
		}
		a.Positions = append(a.Positions, m.Position)
	}

	return Outcome{Message: fmt.Sprintf("User %s has signed off from the activity : %s", userID, a.ID)}, nil
}

// Kick removes the user and any match, but the matched position is not restored.
func (w *Workflow) Kick(ctx context.Context, ledger Ledger, a *Activity, requester, userID string) (Outcome, error) {
	if requester != a.Owner {
		return Outcome{}, ErrNotOwnerKick
	}
	if !a.removeApplicant(userID) {
		return Outcome{}, ErrNotSignedUp
	}

	m, err := findMatch(ctx, ledger, a.ID, userID)
	if err != nil {
		return Outcome{}, err
	}
	if m == nil {
		return Outcome{Message: fmt.Sprintf("User %s kicked successfully !", userID)}, nil
	}

	if err := ledger.Delete(ctx, m.ID); err != nil {
		return Outcome{}, fmt.Errorf("delete match: %w", err)
	}
	return Outcome{Message: fmt.Sprintf("User %s is no longer participating !", userID)}, nil
}

func (w *Workflow) Update(a *Activity, requester string, patch UpdateActivityRequest) (Outcome, error) {
	if requester != a.Owner {
		return Outcome{}, ErrNotOwnerEdit
	}
	if patch.Start != nil && patch.Start.Before(w.now()) {
		return Outcome{}, ErrInThePast
	}

	var positions rowing.Positions
	if patch.Positions != nil {
		var err error
		if positions, err = validPositions(*patch.Positions); err != nil {
			return Outcome{}, err
		}
	}

	switch a.Kind {
	case KindTraining:
		if patch.touchesCompetition() {
			return Outcome{}, ErrCompetitionFieldsOnly
		}
	case KindCompetition:
		if patch.Gender != nil && *patch.Gender != "" && !patch.Gender.Valid() {
			return Outcome{}, ErrInvalidGender
		}
		if a.Competition == nil {
			a.Competition = &Competition{RequiresCompetitive: true}
		}
		if patch.Gender != nil {
			a.Competition.Gender = *patch.Gender
		}
		if patch.Organisation != nil {
			a.Competition.Organisation = *patch.Organisation
		}
		if patch.RequiresCompetitive != nil {
			a.Competition.RequiresCompetitive = *patch.RequiresCompetitive
		}
	default:
		return Outcome{}, ErrUnknownKind
	}

	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Location != nil {
		a.Location = *patch.Location
	}
	if patch.BoatType != nil {
		a.BoatType = *patch.BoatType
	}
	if patch.Start != nil {
		a.Start = *patch.Start
	}
	if patch.Positions != nil {
		a.Positions = positions
	}

	return Outcome{Message: fmt.Sprintf("Activity %s has been updated successfully", a.ID)}, nil
}

func findMatch(ctx context.Context, ledger Ledger, activityID, userID string) (*match.Match, error) {
	m, err := ledger.Find(ctx, activityID, userID)
	if errors.Is(err, match.ErrMatchNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func validPositions(ps []rowing.Position) (rowing.Positions, error) {
	out := make(rowing.Positions, 0, len(ps))
	for _, p := range ps {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPosition, p)
		}
		out = append(out, p)
	}
	return out, nil
}
