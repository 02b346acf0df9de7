package models

// ScraperAccount is one reading platform login the scraper signs in with.
// It is stored as written in the accounts file.
type ScraperAccount struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ScraperAccountView hides the password of a stored account.
type ScraperAccountView struct {
	Username    string `json:"username"`
	HasPassword bool   `json:"has_password"`
}

// ReplaceAccountsRequest replaces every stored account. An empty password
// keeps the stored password of the same username.
type ReplaceAccountsRequest struct {
	Users []ScraperAccount `json:"users"`
}

// View strips the password.
func (a ScraperAccount) View() ScraperAccountView {
	return ScraperAccountView{Username: a.Username, HasPassword: a.Password != ""}
}
