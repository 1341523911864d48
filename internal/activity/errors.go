package activity

import "rowmatch/internal/apperr"

var (
	ErrActivityNotFound = apperr.New(apperr.KindNotFound, "Activity does not exist !")

	ErrAlreadyApplied = apperr.New(apperr.KindConflict, "User already signed up for this activity !")
	ErrAlreadyMatched = apperr.New(apperr.KindConflict, "This user is already participating in the activity")

	ErrNotAvailable         = apperr.New(apperr.KindState, "User is not available for this activity !")
	ErrNotCompetitive       = apperr.New(apperr.KindState, "User is not competitive!")
	ErrGenderMismatch       = apperr.New(apperr.KindState, "User does not fit gender requirements !")
	ErrOrganisationMismatch = apperr.New(apperr.KindState, "User is not part of the organisation !")
	ErrNotApplied           = apperr.New(apperr.KindState, "This user didn't apply for this activity")
	ErrPositionUnavailable  = apperr.New(apperr.KindState, "This position is already full")
	ErrPositionNotPreferred = apperr.New(apperr.KindState, "The user didn't apply for this position")
	ErrMissingCertificate   = apperr.New(apperr.KindState, "The user don't have a certificate for this boat type!")
	ErrNotSignedUp          = apperr.New(apperr.KindState, "User has not signed-up for this activity")
	ErrInThePast            = apperr.New(apperr.KindState, "Activity start time is in the past !")

	ErrNotOwnerAccept = apperr.New(apperr.KindAuthorization, "Only the owner of the activity can accept users !")
	ErrNotOwnerReject = apperr.New(apperr.KindAuthorization, "Only the owner of the activity can reject users !")
	ErrNotOwnerKick   = apperr.New(apperr.KindAuthorization, "Only the owner of the activity can kick users !")
	ErrNotOwnerEdit   = apperr.New(apperr.KindAuthorization, "Only the owner of the activity can edit an activity !")
	ErrNotOwnerDelete = apperr.New(apperr.KindAuthorization, "Only the owner of the activity can delete an activity !")

	ErrUnknownKind           = apperr.Validation("Activity type must be Training or Competition")
	ErrNoPositions           = apperr.Validation("An activity needs at least one position")
	ErrInvalidPosition       = apperr.Validation("Unknown position")
	ErrInvalidGender         = apperr.Validation("Unknown gender")
	ErrCompetitionFieldsOnly = apperr.Validation("Gender, organisation and competitiveness apply to competitions only")
)
