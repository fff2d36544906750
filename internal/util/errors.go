package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSectionNotFound   = errors.New("section not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrDashboardNotFound = errors.New("dashboard not found")
	ErrOptionNotFound    = errors.New("answer option not found")

	// ErrKnowledgeComponentMismatch indicates an answer-option knowledge
	// component that does not belong to the same dashboard as its option.
	ErrKnowledgeComponentMismatch = errors.New("knowledge component dashboard does not match answer option dashboard")

	// ErrInvalidLTISignature indicates a launch request whose OAuth1
	// signature did not verify against the configured consumer secret.
	ErrInvalidLTISignature = errors.New("invalid LTI launch signature")
)

// Fixed user-facing messages for the three submission pipeline failure modes.
// The caller can only distinguish these; nothing finer-grained is exposed.
const (
	MsgAnswersNotSaved       = "Could not update learner answers."
	MsgScoresNotTransmitted  = "Could not transmit scores to adaptive engine."
	MsgSubmissionNotRecorded = "Could not update submission data."
	MsgAnswersSaved          = "Learner answers updated successfully."
)
