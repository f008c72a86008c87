package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Campaigns

type CreateCampaignRequest struct {
	Title      string `json:"title"`
	Product    string `json:"product"`
	GoalAmount string `json:"goal_amount"` // numeric as string
}

type UpdateCampaignRequest struct {
	Title   string `json:"title"`
	Product string `json:"product"`
}

// Donations

type DonateRequest struct {
	Amount  string  `json:"amount"` // numeric as string
	Message *string `json:"message,omitempty"`
}
