package version

// version is set at build time with
// -ldflags "-X github.com/ch1nq/arcadio-go/pkg/version.version=v1.2.3".
var version = "dev"

// Get returns the version of the build.
func Get() string {
	return version
}
