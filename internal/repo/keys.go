package repo

const (
	KeyCatalog  = "catalog"
	KeyUsers    = "users"
	KeyOrders   = "orders"
	KeyFeedback = "feedback"
)

func CartKey(profileID string) string {
	return "profile:" + profileID + ":cart"
}

func SessionKey(profileID string) string {
	return "profile:" + profileID + ":session"
}
