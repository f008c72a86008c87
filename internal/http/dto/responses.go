package dto

import "github.com/shopspring/decimal"

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type DonateResponse struct {
	CampaignID   string          `json:"campaign_id"`
	DonationID   string          `json:"donation_id"`
	RaisedAmount decimal.Decimal `json:"raised_amount"`
	GoalAmount   decimal.Decimal `json:"goal_amount"`
	Status       string          `json:"status"`
}
