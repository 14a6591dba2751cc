package dto

type HostStatsResponse struct {
	TotalExperiences     int `json:"total_experiences"`
	PublishedExperiences int `json:"published_experiences"`
	TotalBookings        int `json:"total_bookings"`
	PendingBookings      int `json:"pending_bookings"`
}
