package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rowmatch/internal/logger"
	"rowmatch/internal/metrics"
	"rowmatch/internal/notification"
	"rowmatch/internal/user"
)

// UserDirectory supplies profile data by net id.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Service interface {
	Create(ctx context.Context, owner string, req CreateActivityRequest) (*Activity, string, error)
	List(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, id string) (*Activity, error)
	Delete(ctx context.Context, requester, id string) (*Activity, error)
	SignUp(ctx context.Context, activityID, userID string, body SignUpBody) (string, error)
	Accept(ctx context.Context, activityID, requester string, sel Selection) (string, error)
	Reject(ctx context.Context, activityID, requester, userID string) (string, error)
	SignOff(ctx context.Context, activityID, userID string) (string, error)
	Kick(ctx context.Context, activityID, requester, userID string) (string, error)
	Update(ctx context.Context, activityID, requester string, patch UpdateActivityRequest) (string, error)
	Participants(ctx context.Context, activityID string) ([]Participant, error)
}

type service struct {
	uow        UnitOfWork
	users      UserDirectory
	dispatcher notification.Dispatcher
	workflow   *Workflow
	now        func() time.Time
}

func NewService(uow UnitOfWork, users UserDirectory, dispatcher notification.Dispatcher, workflow *Workflow) Service {
	if dispatcher == nil {
		dispatcher = notification.Discard{}
	}
	return &service{
		uow:        uow,
		users:      users,
		dispatcher: dispatcher,
		workflow:   workflow,
		now:        time.Now,
	}
}

func (s *service) Create(ctx context.Context, owner string, req CreateActivityRequest) (*Activity, string, error) {
	a, out, err := s.workflow.Create(owner, req)
	if err == nil {
		err = s.uow.Do(ctx, func(r Repos) error {
			return r.Activities.Save(ctx, a)
		})
	}
	metrics.RecordActivityOperation("create", err)
	if err != nil {
		return nil, "", err
	}

	logger.Info("activity created", "activity_id", a.ID, "owner", owner, "type", string(a.Kind))
	return a, out.Message, nil
}

// List returns upcoming activities. Expired ones are deleted together with their matches.
func (s *service) List(ctx context.Context) ([]Activity, error) {
	var upcoming []Activity
	swept := 0

	err := s.uow.Do(ctx, func(r Repos) error {
		all, err := r.Activities.FindAll(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		upcoming = make([]Activity, 0, len(all))
		swept = 0
		for _, a := range all {
			if !a.Expired(now) {
				upcoming = append(upcoming, a)
				continue
			}
			if err := r.Matches.DeleteAllForActivity(ctx, a.ID); err != nil {
				return fmt.Errorf("delete matches of %s: %w", a.ID, err)
			}
			err := r.Activities.Delete(ctx, a.ID)
			switch {
			case errors.Is(err, ErrActivityNotFound):
				// a concurrent listing already swept it
				continue
			case err != nil:
				return fmt.Errorf("delete activity %s: %w", a.ID, err)
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if swept > 0 {
		metrics.RecordSweep(swept)
		logger.Info("expired activities removed", "count", swept)
	}
	return upcoming, nil
}

func (s *service) Get(ctx context.Context, id string) (*Activity, error) {
	var a *Activity
	err := s.uow.Do(ctx, func(r Repos) error {
		var err error
		a, err = r.Activities.FindByID(ctx, id)
		return err
	})
	return a, err
}

func (s *service) Delete(ctx context.Context, requester, id string) (*Activity, error) {
	var deleted *Activity
	err := s.uow.Do(ctx, func(r Repos) error {
		a, err := r.Activities.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Owner != requester {
			return ErrNotOwnerDelete
		}
		if err := r.Matches.DeleteAllForActivity(ctx, id); err != nil {
			return err
		}
		if err := r.Activities.Delete(ctx, id); err != nil {
			return err
		}
		deleted = a
		return nil
	})
	metrics.RecordActivityOperation("delete", err)
	return deleted, err
}

// mutate runs one workflow transition on the locked activity, saves it, and dispatches the outcome's events after commit.
func (s *service) mutate(ctx context.Context, op, activityID string, step func(r Repos, a *Activity) (Outcome, error)) (string, error) {
	var out Outcome
	err := s.uow.Do(ctx, func(r Repos) error {
		a, err := r.Activities.LockByID(ctx, activityID)
		if err != nil {
			return err
		}
		out, err = step(r, a)
		if err != nil {
			return err
		}
		return r.Activities.Save(ctx, a)
	})
	metrics.RecordActivityOperation(op, err)
	if err != nil {
		return "", err
	}

	s.dispatch(ctx, out.Events)
	return out.Message, nil
}

// dispatch is best-effort: a failed notification never fails the committed operation.
func (s *service) dispatch(ctx context.Context, events []notification.Event) {
	ctx = context.WithoutCancel(ctx)
	for _, e := range events {
		if err := s.dispatcher.Notify(ctx, e); err != nil {
			metrics.RecordNotification(string(e.Status), "failed")
			logger.Error("notification dispatch failed",
				"user_id", e.UserID,
				"status", string(e.Status),
				"activity_id", e.ActivityID,
				"error", err,
			)
			continue
		}
		metrics.RecordNotification(string(e.Status), "sent")
	}
}

func (s *service) SignUp(ctx context.Context, activityID, userID string, body SignUpBody) (string, error) {
	req, err := s.signUpRequest(ctx, userID, body)
	if err != nil {
		return "", err
	}
	return s.mutate(ctx, "sign_up", activityID, func(_ Repos, a *Activity) (Outcome, error) {
		return s.workflow.SignUp(a, req)
	})
}

// signUpRequest fills fields missing from body with the user's profile.
func (s *service) signUpRequest(ctx context.Context, userID string, body SignUpBody) (SignUpRequest, error) {
	req := SignUpRequest{UserID: userID}
	if body.Availability != nil && body.Gender != nil && body.Organisation != nil && body.Competitive != nil {
		req.Availability = *body.Availability
		req.Gender = *body.Gender
		req.Organisation = *body.Organisation
		req.Competitive = *body.Competitive
		return req, nil
	}

	profile, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return SignUpRequest{}, err
	}

	req.Availability = profile.Availability
	req.Gender = profile.Gender
	req.Organisation = profile.Organisation
	req.Competitive = profile.Competitive

	if body.Availability != nil {
		req.Availability = *body.Availability
	}
	if body.Gender != nil {
		req.Gender = *body.Gender
	}
	if body.Organisation != nil {
		req.Organisation = *body.Organisation
	}
	if body.Competitive != nil {
		req.Competitive = *body.Competitive
	}
	return req, nil
}

type directoryCandidates struct {
	users UserDirectory
}

func (d directoryCandidates) Candidate(ctx context.Context, userID string) (Candidate, error) {
	u, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		UserID:          u.ID,
		Positions:       u.Positions,
		CoxCertificates: u.CoxCertificates,
		Gender:          u.Gender,
		Competitive:     u.Competitive,
		Organisation:    u.Organisation,
		Availability:    u.Availability,
	}, nil
}

func (s *service) Accept(ctx context.Context, activityID, requester string, sel Selection) (string, error) {
	return s.mutate(ctx, "accept", activityID, func(r Repos, a *Activity) (Outcome, error) {
		return s.workflow.Accept(ctx, r.Matches, directoryCandidates{users: r.Users}, a, requester, sel)
	})
}

func (s *service) Reject(ctx context.Context, activityID, requester, userID string) (string, error) {
	return s.mutate(ctx, "reject", activityID, func(r Repos, a *Activity) (Outcome, error) {
		return s.workflow.Reject(ctx, r.Matches, a, requester, userID)
	})
}

func (s *service) SignOff(ctx context.Context, activityID, userID string) (string, error) {
	return s.mutate(ctx, "sign_off", activityID, func(r Repos, a *Activity) (Outcome, error) {
		return s.workflow.SignOff(ctx, r.Matches, a, userID)
	})
}

func (s *service) Kick(ctx context.Context, activityID, requester, userID string) (string, error) {
	return s.mutate(ctx, "kick", activityID, func(r Repos, a *Activity) (Outcome, error) {
		return s.workflow.Kick(ctx, r.Matches, a, requester, userID)
	})
}

func (s *service) Update(ctx context.Context, activityID, requester string, patch UpdateActivityRequest) (string, error) {
	return s.mutate(ctx, "update", activityID, func(_ Repos, a *Activity) (Outcome, error) {
		return s.workflow.Update(a, requester, patch)
	})
}

// Participants lists matched users with their positions. Profiles that no longer exist are skipped.
func (s *service) Participants(ctx context.Context, activityID string) ([]Participant, error) {
	var participants []Participant
	err := s.uow.Do(ctx, func(r Repos) error {
		if _, err := r.Activities.FindByID(ctx, activityID); err != nil {
			return err
		}
		matches, err := r.Matches.ListByActivity(ctx, activityID)
		if err != nil {
			return err
		}

		participants = make([]Participant, 0, len(matches))
		for _, m := range matches {
			p := Participant{UserID: m.UserID, Position: m.Position}
			u, err := r.Users.FindByID(ctx, m.UserID)
			switch {
			case errors.Is(err, user.ErrUserNotFound):
				continue
			case err != nil:
				return err
			}
			p.FirstName, p.LastName, p.Email = u.FirstName, u.LastName, u.Email
			participants = append(participants, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participants, nil
}
