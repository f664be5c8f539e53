package domain

import "errors"

var ErrNoTechniciansAvailable = errors.New("no lab technicians available")
var ErrInvalidStateTransition = errors.New("invalid case state transition")
var ErrMissingSlideImage = errors.New("slide image is required")
var ErrDuplicateSubmission = errors.New("duplicate submission")
var ErrCaseNotEligible = errors.New("case not eligible for report")
var ErrCaseNotFound = errors.New("case not found")
var ErrTechnicianNotFound = errors.New("technician not found")
var ErrReportPDFMissing = errors.New("report pdf not uploaded")
var ErrReportPDFExists = errors.New("report pdf already attached")
var ErrForbidden = errors.New("access forbidden")

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrUserInactive = errors.New("user account disabled")
