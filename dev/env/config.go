package devenv

// SmartschoolTestConfig is the account used by live tests, it is read from
// `dev/.state/smartschool_config.json5`.
type SmartschoolTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Folder is a custom mydoc folder the live tests may write into.
	Folder string `json:"folder"`
}
