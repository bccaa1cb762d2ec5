package handler

import (
	"time"

	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createDealRequest struct {
	DealName          string     `json:"dealName"     validate:"required"`
	DealType          string     `json:"dealType"     validate:"required"`
	Status            string     `json:"status"       validate:"omitempty,oneof=INITIATED IN_PROGRESS UNDER_REVIEW APPROVED CLOSED CANCELLED"`
	CurrentStage      string     `json:"currentStage" validate:"omitempty,oneof=Prospect UnderEvaluation TermSheetSubmitted Closed Lost"`
	ClientName        string     `json:"clientName"   validate:"required"`
	DealValue         *float64   `json:"dealValue"    validate:"omitempty,gte=0"`
	Currency          string     `json:"currency"`
	Description       string     `json:"description"`
	Summary           string     `json:"summary"`
	Sector            string     `json:"sector"`
	Tags              []string   `json:"tags"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
}

type updateDealRequest struct {
	DealName          *string    `json:"dealName"`
	DealType          *string    `json:"dealType"`
	Status            *string    `json:"status"       validate:"omitempty,oneof=INITIATED IN_PROGRESS UNDER_REVIEW APPROVED CLOSED CANCELLED"`
	CurrentStage      *string    `json:"currentStage" validate:"omitempty,oneof=Prospect UnderEvaluation TermSheetSubmitted Closed Lost"`
	ClientName        *string    `json:"clientName"`
	DealValue         *float64   `json:"dealValue"    validate:"omitempty,gte=0"`
	Currency          *string    `json:"currency"`
	Description       *string    `json:"description"`
	Summary           *string    `json:"summary"`
	Sector            *string    `json:"sector"`
	AssignedTo        *string    `json:"assignedTo"`
	Tags              []string   `json:"tags"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
}

type updateStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=Prospect UnderEvaluation TermSheetSubmitted Closed Lost"`
}

type updateValueRequest struct {
	DealValue float64 `json:"dealValue" validate:"gte=0"`
}

type addNoteRequest struct {
	NoteText string `json:"noteText" validate:"required,min=1"`
}

// --- Mapping helpers ---

func (r createDealRequest) toInput() ports.CreateDealInput {
	return ports.CreateDealInput{
		DealName:          r.DealName,
		DealType:          r.DealType,
		Status:            domain.DealStatus(r.Status),
		CurrentStage:      domain.DealStage(r.CurrentStage),
		ClientName:        r.ClientName,
		DealValue:         r.DealValue,
		Currency:          r.Currency,
		Description:       r.Description,
		Summary:           r.Summary,
		Sector:            r.Sector,
		Tags:              r.Tags,
		ExpectedCloseDate: r.ExpectedCloseDate,
	}
}

func (r updateDealRequest) toInput() ports.UpdateDealInput {
	in := ports.UpdateDealInput{
		DealName:          r.DealName,
		DealType:          r.DealType,
		ClientName:        r.ClientName,
		DealValue:         r.DealValue,
		Currency:          r.Currency,
		Description:       r.Description,
		Summary:           r.Summary,
		Sector:            r.Sector,
		AssignedTo:        r.AssignedTo,
		Tags:              r.Tags,
		ExpectedCloseDate: r.ExpectedCloseDate,
	}
	if r.Status != nil {
		s := domain.DealStatus(*r.Status)
		in.Status = &s
	}
	if r.CurrentStage != nil {
		s := domain.DealStage(*r.CurrentStage)
		in.CurrentStage = &s
	}
	return in
}
