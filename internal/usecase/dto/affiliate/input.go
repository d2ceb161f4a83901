package affiliatedto

type RegisterAffiliateInput struct {
	UserID   string
	District string
}
