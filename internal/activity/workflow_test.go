package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rowmatch/internal/availability"
	"rowmatch/internal/match"
	"rowmatch/internal/notification"
	"rowmatch/internal/rowing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger is an in-memory match store keyed by activity and user.
type memLedger struct {
	rows map[string]*match.Match
}

func newMemLedger() *memLedger {
	return &memLedger{rows: map[string]*match.Match{}}
}

func ledgerKey(activityID, userID string) string { return activityID + "/" + userID }

func (l *memLedger) ExistsFor(_ context.Context, activityID, userID string) (bool, error) {
	_, ok := l.rows[ledgerKey(activityID, userID)]
	return ok, nil
}

func (l *memLedger) Find(_ context.Context, activityID, userID string) (*match.Match, error) {
	m, ok := l.rows[ledgerKey(activityID, userID)]
	if !ok {
		return nil, match.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (l *memLedger) Save(_ context.Context, m *match.Match) error {
	cp := *m
	l.rows[ledgerKey(m.ActivityID, m.UserID)] = &cp
	return nil
}

func (l *memLedger) Delete(_ context.Context, id string) error {
	for k, m := range l.rows {
		if m.ID == id {
			delete(l.rows, k)
			return nil
		}
	}
	return match.ErrMatchNotFound
}

type candidateMap map[string]Candidate

func (c candidateMap) Candidate(_ context.Context, userID string) (Candidate, error) {
	cand, ok := c[userID]
	if !ok {
		return Candidate{}, errors.New("no such user")
	}
	return cand, nil
}

var (
	// 2043-09-23 is a Wednesday.
	testStart = time.Date(2043, time.September, 23, 14, 5, 0, 0, time.Local)
	testNow   = time.Date(2043, time.September, 1, 12, 0, 0, 0, time.Local)
)

func newTestWorkflow() *Workflow {
	w := NewWorkflow(rowing.DefaultCertificates())
	w.now = func() time.Time { return testNow }
	n := 0
	w.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return w
}

func wednesdayAfternoon(t *testing.T) []availability.Interval {
	t.Helper()
	iv, err := availability.Parse("WEDNESDAY", "14:00", "15:00")
	require.NoError(t, err)
	return []availability.Interval{iv}
}

func training(positions ...rowing.Position) *Activity {
	return &Activity{
		ID:         "act-1",
		Owner:      "owner",
		Name:       "Morning eight",
		BoatType:   "C4",
		Kind:       KindTraining,
		Start:      testStart,
		Positions:  rowing.Positions(positions),
		Applicants: []string{},
	}
}

func competition(c Competition, positions ...rowing.Position) *Activity {
	a := training(positions...)
	a.Kind = KindCompetition
	a.Competition = &c
	return a
}

func anyone(positions ...rowing.Position) Candidate {
	return Candidate{Positions: positions}
}

func TestWorkflow_Create(t *testing.T) {
	w := newTestWorkflow()

	a, out, err := w.Create("owner", CreateActivityRequest{
		Name:      "Regatta",
		BoatType:  "8+",
		Type:      KindCompetition,
		Start:     testStart,
		Positions: []rowing.Position{rowing.PositionCox, rowing.PositionPort},
		Gender:    rowing.GenderFemale,
	})
	require.NoError(t, err)
	assert.Equal(t, "Activity id-1 was created successfully !", out.Message)
	assert.Equal(t, "owner", a.Owner)
	require.NotNil(t, a.Competition)
	assert.True(t, a.Competition.RequiresCompetitive, "competitions require competitive rowers unless told otherwise")
	assert.Equal(t, rowing.GenderFemale, a.Competition.Gender)
	assert.Empty(t, a.Applicants)

	cases := []struct {
		name string
		req  CreateActivityRequest
		want error
	}{
		{"unknown type", CreateActivityRequest{Type: "Regatta", Start: testStart, Positions: []rowing.Position{rowing.PositionCox}}, ErrUnknownKind},
		{"start in the past", CreateActivityRequest{Type: KindTraining, Start: testNow.Add(-time.Minute), Positions: []rowing.Position{rowing.PositionCox}}, ErrInThePast},
		{"no positions", CreateActivityRequest{Type: KindTraining, Start: testStart}, ErrNoPositions},
		{"bad position", CreateActivityRequest{Type: KindTraining, Start: testStart, Positions: []rowing.Position{"CAPTAIN"}}, ErrInvalidPosition},
		{"competition fields on training", CreateActivityRequest{Type: KindTraining, Start: testStart, Positions: []rowing.Position{rowing.PositionCox}, Organisation: "Laga"}, ErrCompetitionFieldsOnly},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := w.Create("owner", tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestWorkflow_SignUp(t *testing.T) {
	w := newTestWorkflow()
	a := training(rowing.PositionCoach)

	out, err := w.SignUp(a, SignUpRequest{UserID: "Efe", Availability: wednesdayAfternoon(t)})
	require.NoError(t, err)
	assert.Equal(t, "User Efe signed up for activity : act-1", out.Message)
	assert.Empty(t, out.Events)
	assert.Equal(t, []string{"Efe"}, a.Applicants)

	_, err = w.SignUp(a, SignUpRequest{UserID: "Efe", Availability: wednesdayAfternoon(t)})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, []string{"Efe"}, a.Applicants, "second sign-up must not duplicate the applicant")
}

func TestWorkflow_SignUp_NotAvailable(t *testing.T) {
	w := newTestWorkflow()
	a := training(rowing.PositionCoach)

	monday, err := availability.Parse("MONDAY", "14:00", "15:00")
	require.NoError(t, err)

	_, err = w.SignUp(a, SignUpRequest{UserID: "Efe", Availability: []availability.Interval{monday}})
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.Empty(t, a.Applicants)

	_, err = w.SignUp(a, SignUpRequest{UserID: "Efe"})
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestWorkflow_SignUp_CompetitionRequirements(t *testing.T) {
	tests := []struct {
		name string
		comp Competition
		req  SignUpRequest
		want error
	}{
		{"gender mismatch", Competition{Gender: rowing.GenderMale, RequiresCompetitive: true},
			SignUpRequest{Gender: rowing.GenderFemale, Competitive: true}, ErrGenderMismatch},
		{"not competitive", Competition{RequiresCompetitive: true},
			SignUpRequest{Competitive: false}, ErrNotCompetitive},
		{"wrong organisation", Competition{Organisation: "Laga", RequiresCompetitive: true},
			SignUpRequest{Organisation: "Proteus", Competitive: true}, ErrOrganisationMismatch},
		{"all requirements met", Competition{Gender: rowing.GenderMale, Organisation: "Laga", RequiresCompetitive: true},
			SignUpRequest{Gender: rowing.GenderMale, Organisation: "Laga", Competitive: true}, nil},
		{"not competitive without the flag", Competition{RequiresCompetitive: false},
			SignUpRequest{Competitive: false}, ErrNotCompetitive},
		{"open gender and organisation", Competition{RequiresCompetitive: true},
			SignUpRequest{Gender: rowing.GenderOther, Organisation: "Anything", Competitive: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkflow()
			a := competition(tt.comp, rowing.PositionPort)
			req := tt.req
			req.UserID = "Efe"
			req.Availability = wednesdayAfternoon(t)

			_, err := w.SignUp(a, req)

			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Empty(t, a.Applicants)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"Efe"}, a.Applicants)
		})
	}
}

func TestWorkflow_SignUp_FullActivityWaitlists(t *testing.T) {
	w := newTestWorkflow()
	a := training()

	out, err := w.SignUp(a, SignUpRequest{UserID: "Alex", Availability: wednesdayAfternoon(t)})
	require.NoError(t, err)

	assert.Equal(t, "User Alex signed up for activity : act-1 but since activity was full the user is currently in the waitlist.", out.Message)
	assert.Equal(t, []notification.Event{{UserID: "Alex", Status: notification.StatusActivityFull, ActivityID: "act-1"}}, out.Events)
	assert.Equal(t, []string{"Alex"}, a.Applicants)
}

func TestWorkflow_SignUpThenAcceptEfe(t *testing.T) {
	w := newTestWorkflow()
	ledger := newMemLedger()
	a := training(rowing.PositionCoach)
	ctx := context.Background()

	_, err := w.SignUp(a, SignUpRequest{UserID: "Efe", Availability: wednesdayAfternoon(t)})
	require.NoError(t, err)
	assert.Equal(t, rowing.Positions{rowing.PositionCoach}, a.Positions, "sign-up does not consume positions")

	out, err := w.Accept(ctx, ledger, candidateMap{"Efe": anyone(rowing.PositionCoach)}, a, "owner",
		Selection{UserID: "Efe", Position: rowing.PositionCoach})
	require.NoError(t, err)

	assert.Empty(t, a.Positions)
	assert.Equal(t, "User Efe is accepted successfully to the activity with id act-1", out.Message)
	assert.Equal(t, []notification.Event{{UserID: "Efe", Status: notification.StatusAccepted, ActivityID: "act-1"}}, out.Events)

	m, err := ledger.Find(ctx, "act-1", "Efe")
	require.NoError(t, err)
	assert.Equal(t, rowing.PositionCoach, m.Position)
}

func TestWorkflow_Accept_RemovesOneOccurrence(t *testing.T) {
	w := newTestWorkflow()
	a := training(rowing.PositionPort, rowing.PositionCoach, rowing.PositionPort)
	a.Applicants = []string{"Efe"}

	_, err := w.Accept(context.Background(), newMemLedger(), candidateMap{"Efe": anyone(rowing.PositionPort)}, a, "owner",
		Selection{UserID: "Efe", Position: rowing.PositionPort})
	require.NoError(t, err)

	assert.Equal(t, rowing.Positions{rowing.PositionCoach, rowing.PositionPort}, a.Positions)
}

func TestWorkflow_Accept_FillingNotifiesWaitlist(t *testing.T) {
	w := newTestWorkflow()
	ledger := newMemLedger()
	ctx := context.Background()

	a := training(rowing.PositionCoach)
	a.Applicants = []string{"A", "B", "C", "D"}
	require.NoError(t, ledger.Save(ctx, &match.Match{ID: "m-b", ActivityID: "act-1", UserID: "B", Position: rowing.PositionPort}))

	out, err := w.Accept(ctx, ledger, candidateMap{"A": anyone(rowing.PositionCoach)}, a, "owner",
		Selection{UserID: "A", Position: rowing.PositionCoach})
	require.NoError(t, err)

	assert.Equal(t, []notification.Event{
		{UserID: "A", Status: notification.StatusAccepted, ActivityID: "act-1"},
		{UserID: "C", Status: notification.StatusActivityFull, ActivityID: "act-1"},
		{UserID: "D", Status: notification.StatusActivityFull, ActivityID: "act-1"},
	}, out.Events)
	assert.Equal(t, "User A is accepted successfully to the activity with id act-1"+
		"\nUser C is currently in the waitlist since the activity was full."+
		"\nUser D is currently in the waitlist since the activity was full.", out.Message)
}

func TestWorkflow_Accept_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		boatType  string
		requester string
		sel       Selection
		cand      Candidate
		matched   bool
		want      error
	}{
		{"not the owner", "C4", "Efe", Selection{UserID: "Efe", Position: rowing.PositionCoach}, anyone(rowing.PositionCoach), false, ErrNotOwnerAccept},
		{"did not apply", "C4", "owner", Selection{UserID: "Alex", Position: rowing.PositionCoach}, anyone(rowing.PositionCoach), false, ErrNotApplied},
		{"already matched", "C4", "owner", Selection{UserID: "Efe", Position: rowing.PositionCoach}, anyone(rowing.PositionCoach), true, ErrAlreadyMatched},
		{"position taken", "C4", "owner", Selection{UserID: "Efe", Position: rowing.PositionPort}, anyone(rowing.PositionPort), false, ErrPositionUnavailable},
		{"position not preferred", "C4", "owner", Selection{UserID: "Efe", Position: rowing.PositionCoach}, anyone(rowing.PositionCox), false, ErrPositionNotPreferred},
		{"cox without certificate", "8+", "owner", Selection{UserID: "Efe", Position: rowing.PositionCox},
			Candidate{Positions: []rowing.Position{rowing.PositionCox}, CoxCertificates: []string{"C4"}}, false, ErrMissingCertificate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkflow()
			ledger := newMemLedger()
			a := training(rowing.PositionCoach, rowing.PositionCox)
			a.BoatType = tt.boatType
			a.Applicants = []string{"Efe"}
			if tt.matched {
				require.NoError(t, ledger.Save(ctx, &match.Match{ID: "m-1", ActivityID: "act-1", UserID: "Efe"}))
			}

			_, err := w.Accept(ctx, ledger, candidateMap{"Efe": tt.cand, "Alex": tt.cand}, a, tt.requester, tt.sel)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, rowing.Positions{rowing.PositionCoach, rowing.PositionCox}, a.Positions)
		})
	}
}

func TestWorkflow_Accept_CoxWithHigherCertificate(t *testing.T) {
	w := newTestWorkflow()
	ledger := newMemLedger()
	a := training(rowing.PositionCox)
	a.Applicants = []string{"Efe"}

	cand := Candidate{
		Positions:       []rowing.Position{rowing.PositionCox},
		CoxCertificates: []string{"8+"},
		Gender:          rowing.GenderMale,
		Organisation:    "Laga",
	}

	_, err := w.Accept(context.Background(), ledger, candidateMap{"Efe": cand}, a, "owner",
		Selection{UserID: "Efe", Position: rowing.PositionCox})
	require.NoError(t, err)

	m, err := ledger.Find(context.Background(), "act-1", "Efe")
	require.NoError(t, err)
	assert.Equal(t, rowing.GenderMale, m.Gender)
	assert.Equal(t, "Laga", m.Organisation)
}

func TestWorkflow_Reject(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow()
	ledger := newMemLedger()
	a := training(rowing.PositionCoach)
	a.Applicants = []string{"Efe", "Alex"}
	require.NoError(t, ledger.Save(ctx, &match.Match{ID: "m-alex", ActivityID: "act-1", UserID: "Alex", Position: rowing.PositionPort}))

	_, err := w.Reject(ctx, ledger, a, "Efe", "Efe")
	assert.ErrorIs(t, err, ErrNotOwnerReject)

	_, err = w.Reject(ctx, ledger, a, "owner", "Alex")
	assert.ErrorIs(t, err, ErrAlreadyMatched)

	_, err = w.Reject(ctx, ledger, a, "owner", "Nobody")
	assert.ErrorIs(t, err, ErrNotApplied)

	out, err := w.Reject(ctx, ledger, a, "owner", "Efe")
	require.NoError(t, err)
	assert.Equal(t, "User Efe is rejected successfully", out.Message)
	assert.Equal(t, []notification.Event{{UserID: "Efe", Status: notification.StatusRejected, ActivityID: "act-1"}}, out.Events)
	assert.Equal(t, []string{"Alex"}, a.Applicants)
	assert.Equal(t, rowing.Positions{rowing.PositionCoach}, a.Positions)
}

func TestWorkflow_SignOffAfterAccept(t *testing.T) {
	ctx := context.Background()
	w := newTestWorkflow()
	ledger := newMemLedger()
	a := training(rowing.PositionCoach)

	_, err := w.SignUp(a, SignUpRequest{UserID: "Efe", Availability: wednesdayAfternoon(t)})
	require.NoError(t, err)
	_, err = w.Accept(ctx, ledger, candidateMap{"Efe": anyone(rowing.PositionCoach)}, a, "owner",
		Selection{UserID: "Efe", Position: rowing.PositionCoach})
	require.NoError(t, err)

	out, err := w.SignOff(ctx, ledger, a, "Efe")
	require.NoError(t, err)
	assert.Equal(t, "User Efe has signed off from the activity : act-1", out.Message)

	assert.NotContains(t, a.Applicants, "Efe")
	exists, _ := ledger.ExistsFor(ctx, "act-1", "Efe")
	assert.False(t, exists)
	assert.Equal(t, rowing.Positions{rowing.PositionCoach}, a.Positions, "sign-off reopens the matched position")

	_, err = w.SignUp(a, SignUpRequest{UserID: "Efe", Availability: wednesdayAfternoon(t)})
	assert.NoError(t, err, "user may sign up again after signing off")
}

func TestWorkflow_SignOff_NotSignedUp(t *testing.T) {
	w := newTestWorkflow()
	a := training(rowing.PositionCoach)

	_, err := w.SignOff(context.Background(), newMemLedger(), a, "Efe")
	assert.ErrorIs(t, err, ErrNotSignedUp)
}

func TestWorkflow_Kick(t *testing.T) {
	ctx := context.Background()

	t.Run("applicant only", func(t *testing.T) {
		w := newTestWorkflow()
		a := training(rowing.PositionCoach)
		a.Applicants = []string{"Alex", "Efe"}

		out, err := w.Kick(ctx, newMemLedger(), a, "owner", "Efe")
		require.NoError(t, err)
		assert.Equal(t, "User Efe kicked successfully !", out.Message)
		assert.Equal(t, []string{"Alex"}, a.Applicants)
	})

	t.Run("matched user keeps position closed", func(t *testing.T) {
		w := newTestWorkflow()
		ledger := newMemLedger()
		a := training()
		a.Applicants = []string{"Alex", "Efe"}
		require.NoError(t, ledger.Save(ctx, &match.Match{ID: "m-1", ActivityID: "act-1", UserID: "Efe", Position: rowing.PositionCoach}))

		out, err := w.Kick(ctx, ledger, a, "owner", "Efe")
		require.NoError(t, err)
		assert.Equal(t, "User Efe is no longer participating !", out.Message)

		exists, _ := ledger.ExistsFor(ctx, "act-1", "Efe")
		assert.False(t, exists)
		assert.Empty(t, a.Positions)
	})

	t.Run("not the owner", func(t *testing.T) {
		w := newTestWorkflow()
		a := training(rowing.PositionCoach)
		a.Applicants = []string{"Efe"}

		_, err := w.Kick(ctx, newMemLedger(), a, "Efe", "Efe")
		assert.ErrorIs(t, err, ErrNotOwnerKick)
		assert.Equal(t, []string{"Efe"}, a.Applicants)
	})

	t.Run("not signed up", func(t *testing.T) {
		w := newTestWorkflow()
		_, err := w.Kick(ctx, newMemLedger(), training(rowing.PositionCoach), "owner", "Efe")
		assert.ErrorIs(t, err, ErrNotSignedUp)
	})
}

func TestWorkflow_Update(t *testing.T) {
	w := newTestWorkflow()

	name := "Evening four"
	later := testStart.Add(time.Hour)
	past := testNow.Add(-time.Hour)
	positions := []rowing.Position{rowing.PositionCox, rowing.PositionCox}
	org := "Laga"
	gender := rowing.GenderFemale
	notCompetitive := false

	t.Run("merges set fields", func(t *testing.T) {
		a := training(rowing.PositionCoach)
		out, err := w.Update(a, "owner", UpdateActivityRequest{Name: &name, Start: &later, Positions: &positions})
		require.NoError(t, err)
		assert.Equal(t, "Activity act-1 has been updated successfully", out.Message)
		assert.Equal(t, "Evening four", a.Name)
		assert.Equal(t, later, a.Start)
		assert.Equal(t, rowing.Positions{rowing.PositionCox, rowing.PositionCox}, a.Positions)
		assert.Equal(t, "C4", a.BoatType, "unset fields are kept")
	})

	t.Run("competition fields", func(t *testing.T) {
		a := competition(Competition{RequiresCompetitive: true}, rowing.PositionCoach)
		_, err := w.Update(a, "owner", UpdateActivityRequest{Organisation: &org, Gender: &gender, RequiresCompetitive: &notCompetitive})
		require.NoError(t, err)
		assert.Equal(t, Competition{Gender: rowing.GenderFemale, Organisation: "Laga", RequiresCompetitive: false}, *a.Competition)
	})

	t.Run("errors", func(t *testing.T) {
		a := training(rowing.PositionCoach)

		_, err := w.Update(a, "Efe", UpdateActivityRequest{Name: &name})
		assert.ErrorIs(t, err, ErrNotOwnerEdit)

		_, err = w.Update(a, "owner", UpdateActivityRequest{Start: &past})
		assert.ErrorIs(t, err, ErrInThePast)

		_, err = w.Update(a, "owner", UpdateActivityRequest{Organisation: &org})
		assert.ErrorIs(t, err, ErrCompetitionFieldsOnly)

		assert.Equal(t, "Morning eight", a.Name)
		assert.Equal(t, testStart, a.Start)
	})
}
