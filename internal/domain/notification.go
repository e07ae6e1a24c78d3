package domain

type Notification struct {
	ID        int32  `json:"id"`
	UserID    int32  `json:"user_id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedOn string `json:"created_on"`
}
