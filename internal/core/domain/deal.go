package domain

import "time"

// DealStage represents where a deal sits in the pipeline.
type DealStage string

const (
	StageProspect           DealStage = "Prospect"
	StageUnderEvaluation    DealStage = "UnderEvaluation"
	StageTermSheetSubmitted DealStage = "TermSheetSubmitted"
	StageClosed             DealStage = "Closed"
	StageLost               DealStage = "Lost"
)

// ValidStage reports whether s is a known pipeline stage.
func ValidStage(s DealStage) bool {
	switch s {
	case StageProspect, StageUnderEvaluation, StageTermSheetSubmitted, StageClosed, StageLost:
		return true
	}
	return false
}

// Terminal reports whether the stage ends the deal's lifecycle.
func (s DealStage) Terminal() bool {
	return s == StageClosed || s == StageLost
}

// DealStatus represents the administrative state of a deal.
type DealStatus string

const (
	StatusInitiated   DealStatus = "INITIATED"
	StatusInProgress  DealStatus = "IN_PROGRESS"
	StatusUnderReview DealStatus = "UNDER_REVIEW"
	StatusApproved    DealStatus = "APPROVED"
	StatusClosed      DealStatus = "CLOSED"
	StatusCancelled   DealStatus = "CANCELLED"
)

// ValidStatus reports whether s is a known deal status.
func ValidStatus(s DealStatus) bool {
	switch s {
	case StatusInitiated, StatusInProgress, StatusUnderReview, StatusApproved, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Note is a timestamped comment attached to a deal.
type Note struct {
	UserID    string    `json:"userId" bson:"userId"`
	Username  string    `json:"username" bson:"username"`
	NoteText  string    `json:"noteText" bson:"noteText"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Deal is the core aggregate root of the pipeline.
//
// DealValue is the restricted field: only ADMIN principals may set or see it.
// It is a pointer so that redaction is structural absence on the wire, never a
// zero value that could be confused with a real amount.
type Deal struct {
	ID                 string      `json:"id" bson:"_id,omitempty"`
	DealName           string      `json:"dealName" bson:"dealName"`
	DealType           string      `json:"dealType" bson:"dealType"`
	Status             DealStatus  `json:"status" bson:"status"`
	CurrentStage       DealStage   `json:"currentStage" bson:"currentStage"`
	ClientName         string      `json:"clientName" bson:"clientName"`
	DealValue          *float64    `json:"dealValue,omitempty" bson:"dealValue,omitempty"`
	Currency           string      `json:"currency" bson:"currency"`
	Description        string      `json:"description,omitempty" bson:"description,omitempty"`
	Summary            string      `json:"summary,omitempty" bson:"summary,omitempty"`
	Sector             string      `json:"sector,omitempty" bson:"sector,omitempty"`
	AssignedTo         string      `json:"assignedTo" bson:"assignedTo"`
	AssignedToUsername string      `json:"assignedToUsername" bson:"assignedToUsername"`
	CreatedBy          string      `json:"createdBy" bson:"createdBy"`
	CreatedByUsername  string      `json:"createdByUsername" bson:"createdByUsername"`
	Tags               []string    `json:"tags,omitempty" bson:"tags,omitempty"`
	Notes              []Note      `json:"notes" bson:"notes"`
	ExpectedCloseDate  *time.Time  `json:"expectedCloseDate,omitempty" bson:"expectedCloseDate,omitempty"`
	ActualCloseDate    *time.Time  `json:"actualCloseDate,omitempty" bson:"actualCloseDate,omitempty"`
	CreatedAt          time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt" bson:"updatedAt"`
}
