package entities

type CalendarDayRequest struct {
	Date           string `json:"date"`
	Status         string `json:"status"`
	OpenTime       string `json:"openTime"`
	CloseTime      string `json:"closeTime"`
	SessionsToSell *int   `json:"sessionsToSell"`
}

type CalendarDayResponse struct {
	Date           string `json:"date"`
	Status         string `json:"status"`
	OpenTime       string `json:"openTime"`
	CloseTime      string `json:"closeTime"`
	SessionsToSell int    `json:"sessionsToSell"`
}
