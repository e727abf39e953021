package notification

type CreateAccessRequestDTO struct {
	FeatureCode string `json:"feature_code" validate:"required,max=150"`
	Action      string `json:"action" validate:"required,oneof=view create edit delete"`
	Reason      string `json:"reason" validate:"max=1000"`
}

type DecisionDTO struct {
	Note string `json:"note" validate:"max=1000"`
}

type NotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	Unread        int64           `json:"unread"`
}

type AccessRequestsResponse struct {
	Requests []*AccessRequest `json:"requests"`
	Pending  int64            `json:"pending"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
