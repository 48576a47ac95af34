package domain

// BootstrapData describes the first admin account.
type BootstrapData struct {
	Email    string
	Name     string
	Password string
}
