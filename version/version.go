package version //nolint:revive // package name intentionally matches build-info convention

//nolint:gochecknoglobals //version information is set at build time
var (
	Repository string
	Version    string
	Commit     string
	Date       string
)

// Or returns the version stamped at build time, fallback when the binary carries none.
func Or(fallback string) string {
	if Version == "" {
		return fallback
	}
	return Version
}
