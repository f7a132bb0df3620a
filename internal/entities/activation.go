package entities

import "time"

type ActivationRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Message       string `json:"message"`
	PreferredDate string `json:"preferredDate"`
	PackageID     int    `json:"packageId"`
}

type ActivationResponse struct {
	ID                int        `json:"id"`
	FullName          string     `json:"fullName"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Address           string     `json:"address"`
	Message           string     `json:"message,omitempty"`
	PackageID         int        `json:"packageId"`
	PackageName       string     `json:"packageName"`
	TotalSessions     int        `json:"totalSessions"`
	UsedCount         int        `json:"usedCount"`
	RemainingSessions int        `json:"remainingSessions"`
	Status            string     `json:"status"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
}

type ActivationStatusUpdateRequest struct {
	Status    string `json:"status"`
	StartDate string `json:"startDate,omitempty"`
}

type ActivationList struct {
	Activations []ActivationResponse `json:"activations"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	TotalPages  int                  `json:"totalPages"`
}

type PackageResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Duration   string `json:"duration"`
	Sessions   int    `json:"sessions"`
	TotalPrice int    `json:"totalPrice"`
	Discount   int    `json:"discount"`
}
